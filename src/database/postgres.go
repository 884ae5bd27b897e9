package database

import (
	"context"
	"fmt"
	"time"

	"assetsync/src/config"
	aws_handler "assetsync/src/utils/aws"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// SetupDB builds the pgx connection pool for the service. The connection
// string comes from config, or from AWS Secrets Manager when a secret id is
// configured.
func SetupDB(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// The database container may still be starting; retry the first ping.
	backoff := retry.WithMaxRetries(5, retry.NewConstant(2*time.Second))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func resolveDSN(cfg *config.Config) (string, error) {
	sqlCfg := cfg.Databases.SQL

	if sqlCfg.SecretID != "" {
		handler, err := aws_handler.NewAWSHandler(sqlCfg.AWSRegion)
		if err != nil {
			return "", err
		}
		return handler.SecretManager.GetSecretValue(sqlCfg.SecretID)
	}

	if sqlCfg.ConnectionString != "" {
		return sqlCfg.ConnectionString, nil
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		sqlCfg.Host,
		sqlCfg.Username,
		sqlCfg.Password,
		sqlCfg.Database,
		sqlCfg.Port), nil
}
