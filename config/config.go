package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Queue       QueueConfig
	Reservation ReservationConfig
	LogLevel    string
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

// StorageConfig 選擇資料層實作：postgres 或 memory
type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// QueueConfig 選擇車位異動事件隊列：redis (Stream) 或 memory (channel)
type QueueConfig struct {
	Driver     string
	BufferSize int
}

// ReservationConfig 車廂鋪位配置，決定三個等級的容量
type ReservationConfig struct {
	BerthSets        int // LOWER/MIDDLE/UPPER 三鋪一組
	SideLowerBerths  int // RAC 共用側下鋪
	RACSlotsPerBerth int
	WaitingListSize  int
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	QueueDriverRedis  = "redis"
	QueueDriverMemory = "memory"
)

var AppConfig *Config

func LoadConfig() *Config {
	// .env 為選用，找不到時沿用環境變數
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded, using process environment")
	}

	AppConfig = &Config{
		Server:      GetServerConfig(),
		Storage:     StorageConfig{Driver: getEnv("STORAGE_DRIVER", StorageDriverPostgres)},
		Database:    GetDatabaseConfig(),
		Redis:       GetRedisConfig(),
		Queue:       GetQueueConfig(),
		Reservation: GetReservationConfig(),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
		MaxConns: 10,
		MinConns: 1,
	}

	testRedisConfig := RedisConfig{
		Enabled:  true,
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:      ServerConfig{Port: "8080", Mode: "test", AllowedOrigins: []string{"*"}},
		Storage:     StorageConfig{Driver: StorageDriverPostgres},
		Database:    testConfig,
		Redis:       testRedisConfig,
		Queue:       QueueConfig{Driver: QueueDriverMemory, BufferSize: 100},
		Reservation: DefaultReservationConfig(),
		LogLevel:    "debug",
	}
}

func GetServerConfig() ServerConfig {
	origins := strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return ServerConfig{
		Port:           getEnv("APP_PORT", "8080"),
		Mode:           getEnv("GIN_MODE", "release"),
		AllowedOrigins: origins,
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "railway_reservation"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
	}
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvBool("REDIS_ENABLED", true),
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func GetQueueConfig() QueueConfig {
	return QueueConfig{
		Driver:     getEnv("QUEUE_DRIVER", QueueDriverRedis),
		BufferSize: getEnvInt("QUEUE_BUFFER_SIZE", 256),
	}
}

func DefaultReservationConfig() ReservationConfig {
	return ReservationConfig{
		BerthSets:        21,
		SideLowerBerths:  9,
		RACSlotsPerBerth: 2,
		WaitingListSize:  10,
	}
}

func GetReservationConfig() ReservationConfig {
	def := DefaultReservationConfig()
	return ReservationConfig{
		BerthSets:        getEnvInt("BERTH_SETS", def.BerthSets),
		SideLowerBerths:  getEnvInt("SIDE_LOWER_BERTHS", def.SideLowerBerths),
		RACSlotsPerBerth: getEnvInt("RAC_SLOTS_PER_BERTH", def.RACSlotsPerBerth),
		WaitingListSize:  getEnvInt("WAITING_LIST_SIZE", def.WaitingListSize),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		panic(err)
	}
	return b
}
