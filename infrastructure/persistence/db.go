package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"watch-tracker/infrastructure/configuration"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgreSQLDB opens the PostgreSQL database described by configuration.C.
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Psql
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewRepositories opens the MySQL database through gorm.
func NewRepositories() (*gorm.DB, error) {
	cfg := configuration.C.Database.MySql
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return db, nil
}

// NewMongoDb connects to MongoDB and verifies the connection. The database
// name is chosen later by NewMongoStore.
func NewMongoDb(host, port, user, password string) (*mongo.Client, error) {
	u := &url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%s", host, port)}
	if user != "" {
		u.User = url.UserPassword(user, password)
		u.RawQuery = url.Values{"authSource": {"admin"}}.Encode()
	}

	client, err := mongo.Connect(options.Client().ApplyURI(u.String()))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// prefixedKey namespaces a storage key so several trackers can share one table.
func prefixedKey(prefix, key string) string {
	return prefix + key
}
