package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"watch-tracker/infrastructure/logger"

	"github.com/spf13/viper"
)

const (
	DefaultPort        = 10001
	DefaultHost        = "127.0.0.1"
	DefaultGoalMinutes = 120
	DefaultDataDir     = "./data"
)

type Config struct {
	App         App         `json:"app"`
	Storage     Storage     `json:"storage"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	YouTube     YouTube     `json:"youtube"`
}

type App struct {
	Host               string `json:"host"`
	Port               int    `json:"port"`
	Timezone           string `json:"timezone"`
	DefaultGoalMinutes int    `json:"defaultGoalMinutes"`
}

// Storage selects the key-value medium holding the tracker state.
// Driver is one of file, memory, redis, postgres, mssql, mysql, mongo.
type Storage struct {
	Driver    string `json:"driver"`
	DataDir   string `json:"dataDir"`
	KeyPrefix string `json:"keyPrefix"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

type YouTube struct {
	APIKey          string `json:"apiKey"`
	ClientID        string `json:"clientId"`
	ClientSecret    string `json:"clientSecret"`
	RedirectURI     string `json:"redirectURI"`
	Endpoint        string `json:"endpoint"`
	CacheTTLMinutes int    `json:"cacheTTLMinutes"`
}

var C Config

func init() {
	Reload()
}

// Reload re-reads the config file and applies env overrides, used after
// env files are loaded into the process environment.
func Reload() {
	C = Config{}
	LoadConfig()
	initApp(&C)
	initStorage(&C)
	initDatabase(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Warn("Config file not found, using defaults")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = DefaultPort
	}
	C.App.Host = getConfigValue(C.App.Host, "APP_HOST", DefaultHost)
	C.App.Timezone = getConfigValue(C.App.Timezone, "TZ_NAME", "")
	if C.App.DefaultGoalMinutes <= 0 {
		C.App.DefaultGoalMinutes = DefaultGoalMinutes
	}
}

func initStorage(C *Config) {
	C.Storage.Driver = getConfigValue(C.Storage.Driver, "STORAGE_DRIVER", "file")
	C.Storage.DataDir = getConfigValue(C.Storage.DataDir, "DATA_DIR", DefaultDataDir)
	C.Storage.KeyPrefix = getConfigValue(C.Storage.KeyPrefix, "STORAGE_KEY_PREFIX", "")
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "watch_tracker")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")

	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "watch_tracker")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "sa")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "")

	C.Database.MySql.Name = getConfigValue(C.Database.MySql.Name, "MYSQL_DB_NAME", "watch_tracker")
	C.Database.MySql.Host = getConfigValue(C.Database.MySql.Host, "MYSQL_HOST", "localhost")
	C.Database.MySql.Port = getConfigValue(C.Database.MySql.Port, "MYSQL_PORT", "3306")
	C.Database.MySql.User = getConfigValue(C.Database.MySql.User, "MYSQL_USER", "root")
	C.Database.MySql.Password = getConfigValue(C.Database.MySql.Password, "MYSQL_PASSWORD", "")

	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "watch_tracker")
	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "localhost")
	C.Database.Mongo.Port = getConfigValue(C.Database.Mongo.Port, "MONGO_PORT", "27017")
	C.Database.Mongo.User = getConfigValue(C.Database.Mongo.User, "MONGO_USER", "")
	C.Database.Mongo.Password = getConfigValue(C.Database.Mongo.Password, "MONGO_PASSWORD", "")

	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "localhost")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
	C.RedisClient.Username = getConfigValue(C.RedisClient.Username, "REDIS_USERNAME", "")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			C.RedisClient.DB = db
		}
	}
}

// Location resolves the configured timezone used for month keys. An empty
// or unknown name falls back to the local zone.
func (a App) Location() *time.Location {
	if a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		logger.GetLogger().WithField("timezone", a.Timezone).WithField("error", err).Warn("Unknown timezone, using local")
		return time.Local
	}
	return loc
}

// Addr is the listen address of the local API.
func (a App) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// RedisAddr joins host and port, preferring REDIS_ADDR when set.
func (r RedisClient) Addr() string {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		return v
	}
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}
