package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Defaults   DefaultsConfig
	Automation AutomationConfig
	Courier    CourierConfig
	Notify     NotifyConfig
	Payment    PaymentConfig
}

type ServerConfig struct {
	Port               string
	Env                string
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	URL      string
}

type DefaultsConfig struct {
	AdminPassword   string `mapstructure:"admin_password"`
	AdminEmployeeID string `mapstructure:"admin_employee_id"`
	ManagerPrefix   string `mapstructure:"manager_prefix"`
	SupportPrefix   string `mapstructure:"support_prefix"`
	StoreName       string `mapstructure:"store_name"`
	StoreLogo       string `mapstructure:"store_logo"`
	StoreAddress    string `mapstructure:"store_address"`
	StorePhone      string `mapstructure:"store_phone"`
	ActivityLogCap  int    `mapstructure:"activity_log_cap"`
}

// AutomationConfig holds the lifecycle engine's tick interval and the
// elapsed-time thresholds behind each automatic transition.
type AutomationConfig struct {
	Enabled            bool
	TickInterval       time.Duration
	ProcessingAfter    time.Duration // order: pending -> processing
	ShipAfter          time.Duration // order: processing -> shipped
	DeliveryOverdue    time.Duration // force-deliver this long past the estimate
	ReturnApproveAfter time.Duration // return: pending -> approved
	ReturnRefundAfter  time.Duration // return: approved -> processed
}

type CourierConfig struct {
	Provider       string // "simulated" or "delhivery"
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

type NotifyConfig struct {
	Mode         string // "simulated" or "http"
	EmailURL     string
	EmailAPIKey  string
	SMSURL       string
	SMSAccountID string
	SMSToken     string
	FromEmail    string
	FromPhone    string
}

type PaymentConfig struct {
	GatewayKeyID  string
	GatewaySecret string
}

var AppConfig *Config

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// Read .env file
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, checking environment variables: %v", err)
	}

	// Enable reading from OS environment variables as fallback/override
	viper.AutomaticEnv()

	// Explicitly bind environment variables for robustness
	viper.BindEnv("SERVER_PORT", "PORT") // Fallback to PORT if SERVER_PORT is missing
	viper.BindEnv("DATABASE_URL")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("JWT_EXPIRATION_HOURS", 24)
	viper.SetDefault("ACTIVITY_LOG_CAP", 100)

	viper.SetDefault("AUTOMATION_ENABLED", true)
	viper.SetDefault("AUTOMATION_TICK_SECONDS", 60)
	viper.SetDefault("ORDER_PROCESSING_AFTER_MINUTES", 5)
	viper.SetDefault("ORDER_SHIP_AFTER_MINUTES", 30)
	viper.SetDefault("DELIVERY_OVERDUE_HOURS", 24)
	viper.SetDefault("RETURN_APPROVE_AFTER_HOURS", 24)
	viper.SetDefault("RETURN_REFUND_AFTER_HOURS", 48)

	viper.SetDefault("COURIER_PROVIDER", "simulated")
	viper.SetDefault("COURIER_TIMEOUT_SECONDS", 15)
	viper.SetDefault("NOTIFY_MODE", "simulated")

	// Manually map configuration to struct
	AppConfig = &Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			Env:                viper.GetString("SERVER_ENV"),
			JWTSecret:          viper.GetString("JWT_SECRET"),
			JWTExpirationHours: viper.GetInt("JWT_EXPIRATION_HOURS"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			URL:      viper.GetString("DATABASE_URL"),
		},
		Defaults: DefaultsConfig{
			AdminPassword:   viper.GetString("ADMIN_PASSWORD"),
			AdminEmployeeID: viper.GetString("ADMIN_EMPLOYEE_ID"),
			ManagerPrefix:   viper.GetString("MANAGER_PREFIX"),
			SupportPrefix:   viper.GetString("SUPPORT_PREFIX"),
			StoreName:       viper.GetString("STORE_NAME"),
			StoreLogo:       viper.GetString("STORE_LOGO"),
			StoreAddress:    viper.GetString("STORE_ADDRESS"),
			StorePhone:      viper.GetString("STORE_PHONE"),
			ActivityLogCap:  viper.GetInt("ACTIVITY_LOG_CAP"),
		},
		Automation: AutomationConfig{
			Enabled:            viper.GetBool("AUTOMATION_ENABLED"),
			TickInterval:       time.Duration(viper.GetInt("AUTOMATION_TICK_SECONDS")) * time.Second,
			ProcessingAfter:    time.Duration(viper.GetInt("ORDER_PROCESSING_AFTER_MINUTES")) * time.Minute,
			ShipAfter:          time.Duration(viper.GetInt("ORDER_SHIP_AFTER_MINUTES")) * time.Minute,
			DeliveryOverdue:    time.Duration(viper.GetInt("DELIVERY_OVERDUE_HOURS")) * time.Hour,
			ReturnApproveAfter: time.Duration(viper.GetInt("RETURN_APPROVE_AFTER_HOURS")) * time.Hour,
			ReturnRefundAfter:  time.Duration(viper.GetInt("RETURN_REFUND_AFTER_HOURS")) * time.Hour,
		},
		Courier: CourierConfig{
			Provider:       viper.GetString("COURIER_PROVIDER"),
			BaseURL:        viper.GetString("COURIER_BASE_URL"),
			APIKey:         viper.GetString("COURIER_API_KEY"),
			RequestTimeout: time.Duration(viper.GetInt("COURIER_TIMEOUT_SECONDS")) * time.Second,
		},
		Notify: NotifyConfig{
			Mode:         viper.GetString("NOTIFY_MODE"),
			EmailURL:     viper.GetString("NOTIFY_EMAIL_URL"),
			EmailAPIKey:  viper.GetString("NOTIFY_EMAIL_API_KEY"),
			SMSURL:       viper.GetString("NOTIFY_SMS_URL"),
			SMSAccountID: viper.GetString("NOTIFY_SMS_ACCOUNT_ID"),
			SMSToken:     viper.GetString("NOTIFY_SMS_TOKEN"),
			FromEmail:    viper.GetString("NOTIFY_FROM_EMAIL"),
			FromPhone:    viper.GetString("NOTIFY_FROM_PHONE"),
		},
		Payment: PaymentConfig{
			GatewayKeyID:  viper.GetString("PAYMENT_GATEWAY_KEY_ID"),
			GatewaySecret: viper.GetString("PAYMENT_GATEWAY_SECRET"),
		},
	}

	log.Printf("Configuration loaded successfully:")
	log.Printf("- Server Port: %s", AppConfig.Server.Port)
	log.Printf("- Server Env: %s", AppConfig.Server.Env)
	log.Printf("- Database Driver: %s", AppConfig.Database.Driver)
	log.Printf("- Database Host: %s", AppConfig.Database.Host)
	log.Printf("- Database Name: %s", AppConfig.Database.Name)
	log.Printf("- Courier Provider: %s", AppConfig.Courier.Provider)
	log.Printf("- Notify Mode: %s", AppConfig.Notify.Mode)
	log.Printf("- Automation Enabled: %v", AppConfig.Automation.Enabled)
}
