package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// Transition policies accepted by TRANSITION_POLICY.
const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

// Notification transports accepted by NOTIFY_TRANSPORT.
const (
	TransportLocal = "local"
	TransportRedis = "redis"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the connection used by the order store, wallets and the event bus.
	Redis RedisConfig `mapstructure:",squash"`

	// Stripe holds the refund gateway configuration.
	Stripe StripeConfig `mapstructure:",squash"`

	// Lifecycle holds the order state machine settings.
	Lifecycle LifecycleConfig `mapstructure:",squash"`

	// Tracking holds the shipment simulator settings.
	Tracking TrackingConfig `mapstructure:",squash"`

	// Notify holds the notification fan-out settings.
	Notify NotifyConfig `mapstructure:",squash"`
}

// RedisConfig holds the Redis connection details.
type RedisConfig struct {
	// URL has the form redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// StripeConfig holds the credentials for the refund gateway.
type StripeConfig struct {
	// APIKey is the secret key used for refund calls.
	APIKey string `mapstructure:"STRIPE_API_KEY" required:"true"`
	// AccountID optionally scopes calls to a connected account.
	AccountID string `mapstructure:"STRIPE_ACCOUNT_ID"`
	// Timeout bounds every gateway call.
	Timeout time.Duration `mapstructure:"GATEWAY_TIMEOUT" default:"15s"`
}

// LifecycleConfig controls how order status transitions are validated and retried.
type LifecycleConfig struct {
	// TransitionPolicy is either "permissive" or "strict".
	TransitionPolicy string `mapstructure:"TRANSITION_POLICY" default:"permissive"`
	// ConflictRetries is how many times a caller re-runs an action after a write conflict.
	ConflictRetries int `mapstructure:"CONFLICT_RETRIES" default:"3"`
}

// TrackingConfig controls the shipment simulator.
type TrackingConfig struct {
	// TickInterval is the period between simulated position updates.
	TickInterval time.Duration `mapstructure:"TRACKING_TICK_INTERVAL" default:"30s"`
	// SweepInterval is the period of the stale-simulation reconciliation sweep.
	SweepInterval time.Duration `mapstructure:"TRACKING_SWEEP_INTERVAL" default:"1h"`
	// BaseLatitude anchors generated routes.
	BaseLatitude float64 `mapstructure:"TRACKING_BASE_LAT" default:"28.6139"`
	// BaseLongitude anchors generated routes.
	BaseLongitude float64 `mapstructure:"TRACKING_BASE_LNG" default:"77.2090"`
}

// NotifyConfig controls the notification fan-out.
type NotifyConfig struct {
	// Transport is either "local" or "redis".
	Transport string `mapstructure:"NOTIFY_TRANSPORT" default:"local"`
	// Channel is the Redis channel used by the redis transport.
	Channel string `mapstructure:"NOTIFY_CHANNEL" default:"fulfillment:events"`
	// Buffer is the number of events queued per subscriber before drops.
	Buffer int `mapstructure:"NOTIFY_BUFFER" default:"32"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	processTags(v, &config)

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate checks the enumerated and numeric settings.
func (c *AppConfig) validate() error {
	switch c.Lifecycle.TransitionPolicy {
	case PolicyPermissive, PolicyStrict:
	default:
		return fmt.Errorf("invalid TRANSITION_POLICY %q: want %q or %q", c.Lifecycle.TransitionPolicy, PolicyPermissive, PolicyStrict)
	}

	switch c.Notify.Transport {
	case TransportLocal, TransportRedis:
	default:
		return fmt.Errorf("invalid NOTIFY_TRANSPORT %q: want %q or %q", c.Notify.Transport, TransportLocal, TransportRedis)
	}

	if c.Tracking.TickInterval <= 0 {
		return errors.New("TRACKING_TICK_INTERVAL must be positive")
	}
	if c.Tracking.SweepInterval <= 0 {
		return errors.New("TRACKING_SWEEP_INTERVAL must be positive")
	}
	if c.Lifecycle.ConflictRetries < 1 {
		return errors.New("CONFLICT_RETRIES must be at least 1")
	}

	return nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			processTags(v, val.Field(i).Addr().Interface())
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}

		_ = v.BindEnv(key)

		if defaultValue := field.Tag.Get("default"); defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
