package redis_client

import (
	"context"
	"strconv"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shvilbus/shvilbus/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["SHVILBUS_REDIS_ADDRESS"] != "" {
		address = env["SHVILBUS_REDIS_ADDRESS"]
	}

	if env["SHVILBUS_REDIS_PASSWORD"] != "" {
		password = env["SHVILBUS_REDIS_PASSWORD"]
	}

	if env["SHVILBUS_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["SHVILBUS_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())

	return statusCmd.Err()
}

// NewStringCache wraps the shared client in a gocache string cache, used for
// upstream API responses such as Shabbat times.
func NewStringCache() *cache.Cache[string] {
	if Client == nil {
		return nil
	}

	return cache.New[string](redisstore.NewRedis(Client, store.WithExpiration(24*time.Hour)))
}
