package core

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// initRedis Initializes a Redis client connection.
//
// db is a pointer to the Database struct containing Redis connection details.
// Returns a pointer to a redis.Client.
func initRedis(db *Database) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     db.RedisHost,
		Password: db.RedisPassword,
		DB:       db.RedisDb,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// test connection
	err := rdb.Ping(ctx).Err()
	if err != nil {
		panic(fmt.Sprintf("Could not connect to Redis: %v", err))
	}
	return rdb
}
