package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectPostgres connects to PostgreSQL and returns the handle.
// Connection failure at startup is fatal.
func ConnectPostgres(s Settings) *sql.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		s.PgHost, s.PgPort, s.PgUser, s.PgPassword, s.PgDatabase)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping PostgreSQL:", err)
	}

	log.Println("Connected to PostgreSQL successfully")
	return db
}

// ConnectMongoDB connects to MongoDB and returns the database handle.
// Connection failure at startup is fatal.
func ConnectMongoDB(s Settings) *mongo.Database {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}

	log.Printf("Connected to MongoDB successfully (database: %s)", s.MongoDatabase)
	return client.Database(s.MongoDatabase)
}
