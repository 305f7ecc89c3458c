package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/config"
)

// Process-wide clients. Mongo and Redis are mandatory, the others stay nil
// when they are not configured or unreachable.
var (
	Mongo   *mongo.Client
	DB      *mongo.Database
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
	Scylla  *gocql.Session
)

// ConnectDatabases opens every backing store described by cfg.
func ConnectDatabases(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := connectMongo(ctx, cfg); err != nil {
		return err
	}
	if err := connectRedis(ctx, cfg); err != nil {
		return err
	}
	connectElastic(cfg)
	connectMinIO(ctx, cfg)
	connectScylla(cfg)

	zap.L().Info("✅ data stores connected")
	return nil
}

// CloseDatabases releases every open client.
func CloseDatabases(ctx context.Context) {
	if Scylla != nil {
		Scylla.Close()
		zap.L().Info("🔌 ScyllaDB session closed")
	}
	if Redis != nil {
		_ = Redis.Close()
	}
	if Mongo != nil {
		if err := Mongo.Disconnect(ctx); err != nil {
			zap.L().Warn("⚠️ mongo disconnect", zap.Error(err))
		}
	}
}

func connectMongo(ctx context.Context, cfg *config.Config) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	Mongo = client
	DB = client.Database(cfg.MongoDB)

	if err := EnsureIndexes(ctx, DB); err != nil {
		zap.L().Warn("⚠️ mongo indexes", zap.Error(err))
	}
	zap.L().Info("✅ connected to MongoDB", zap.String("db", cfg.MongoDB))
	return nil
}

func connectRedis(ctx context.Context, cfg *config.Config) error {
	Redis = redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	zap.L().Info("✅ connected to Redis", zap.String("addr", cfg.RedisHost))
	return nil
}

func connectElastic(cfg *config.Config) {
	if cfg.ElasticURL == "" {
		zap.L().Warn("⚠️ ELASTIC_URL not set, product search falls back to MongoDB")
		return
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		zap.L().Warn("⚠️ elasticsearch client", zap.Error(err))
		return
	}
	res, err := client.Info()
	if err != nil {
		zap.L().Warn("⚠️ elasticsearch unreachable", zap.Error(err))
		return
	}
	res.Body.Close()

	Elastic = client
	zap.L().Info("✅ connected to Elasticsearch")
}

func connectMinIO(ctx context.Context, cfg *config.Config) {
	if cfg.MinioEndpoint == "" {
		zap.L().Warn("⚠️ MINIO_ENDPOINT not set, image uploads disabled")
		return
	}
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		zap.L().Warn("⚠️ minio client", zap.Error(err))
		return
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		zap.L().Warn("⚠️ minio bucket check", zap.Error(err))
		return
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			zap.L().Warn("⚠️ minio make bucket", zap.Error(err))
			return
		}
		zap.L().Info("🪣 bucket created", zap.String("bucket", cfg.MinioBucket))
	}

	MinIO = client
	zap.L().Info("✅ connected to MinIO", zap.String("endpoint", cfg.MinioEndpoint))
}

func connectScylla(cfg *config.Config) {
	if len(cfg.ScyllaHosts) == 0 {
		zap.L().Warn("⚠️ SCYLLA_HOSTS not set, audit log disabled")
		return
	}
	session, err := newScyllaSession(cfg)
	if err != nil {
		zap.L().Warn("⚠️ scylla session", zap.Error(err))
		return
	}
	if err := EnsureAuditSchema(session); err != nil {
		zap.L().Warn("⚠️ scylla audit schema", zap.Error(err))
	}
	Scylla = session
	zap.L().Info("✅ connected to ScyllaDB", zap.String("keyspace", cfg.ScyllaKeyspace))
}

func newScyllaSession(cfg *config.Config) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 4
	cluster.ReconnectInterval = time.Second
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	if cfg.ScyllaUser != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUser,
			Password: cfg.ScyllaPassword,
		}
	}
	return cluster.CreateSession()
}
