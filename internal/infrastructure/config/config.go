package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Logger      LoggerConfig     `mapstructure:"logger"`
	Budget      BudgetConfig     `mapstructure:"budget"`
	Rewards     RewardsConfig    `mapstructure:"rewards"`
	Withdrawal  WithdrawalConfig `mapstructure:"withdrawal"`
	Referral    ReferralConfig   `mapstructure:"referral"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// BudgetConfig contains the platform-wide reward budget caps. The caps seed
// the durable budget row on first start; after that the stored values win
// until an operator updates them.
type BudgetConfig struct {
	DailyCapCents  int64 `mapstructure:"dailyCapCents"`
	WeeklyCapCents int64 `mapstructure:"weeklyCapCents"`
}

// RewardsConfig contains per-source reward settings
type RewardsConfig struct {
	SpinsPerDay        int   `mapstructure:"spinsPerDay"`
	MysteryBoxesPerDay int   `mapstructure:"mysteryBoxesPerDay"`
	MissionsPerDay     int   `mapstructure:"missionsPerDay"`
	StreakBaseCents    int64 `mapstructure:"streakBaseCents"`
	StreakMaxDays      int   `mapstructure:"streakMaxDays"`
}

// WithdrawalConfig contains withdrawal settings
type WithdrawalConfig struct {
	MinimumCents int64 `mapstructure:"minimumCents"`
}

// ReferralConfig contains referral commission settings
type ReferralConfig struct {
	RatePercent int    `mapstructure:"ratePercent"`
	BillingCron string `mapstructure:"billingCron"`
}
