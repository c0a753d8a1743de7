package deps

import (
	"context"
	"herbarium/internal/config"
	dl "herbarium/internal/core/domain/logging"
	drl "herbarium/internal/core/domain/rate_limiter"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	dbtoken "herbarium/internal/db/token"
	dbuser "herbarium/internal/db/user"
	"herbarium/internal/implementations/email"
	"herbarium/internal/implementations/logging"
	passwordhasher "herbarium/internal/implementations/password_hasher"
	ratelimiter "herbarium/internal/implementations/rate_limiter"
	tokenvaluegenerator "herbarium/internal/implementations/token_value_generator"
	"herbarium/internal/rabbitmq"
	tokennotification "herbarium/internal/rabbitmq/publishers/token_notification"
	redistoken "herbarium/internal/redis/token"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UserRepository  user.Repository
	TokenRepository token.Repository

	RateLimiter drl.RateLimiter

	PasswordHasher      user.PasswordHasher
	TokenValueGenerator token.ValueGenerator

	// EmailSender delivers directly via SES; the worker uses it.
	EmailSender *email.TokenSender
	// TokenNotificationPublisher enqueues the notification for the worker;
	// the HTTP server's issue path uses it.
	TokenNotificationPublisher token.Sender
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()
	deps.initAwsConfig()

	closeLogger := deps.initLogger()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()
	closeRabbitmqConn := deps.initRabbitmqConnection()

	deps.Now = func() time.Time { return time.Now().UTC() }

	deps.UserRepository = dbuser.NewPgxRepository(deps.DB)
	deps.initTokenRepository()

	deps.RateLimiter = ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)
	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	deps.TokenValueGenerator = tokenvaluegenerator.NewCryptoRandom()

	deps.EmailSender = email.NewTokenSender(
		deps.AwsConfig,
		deps.Config.AwsEmailSender,
		deps.Config.APIPrefix,
		deps.Config.AwsEmailVerificationTemplate,
		deps.Config.AwsEmailPasswordResetTemplate,
	)

	closeTokenNotificationPublisher := deps.initRabbitmqTokenNotificationPublisher()

	return deps, func() {
		closeFuncs := []func(){
			closeTokenNotificationPublisher,
			closeRabbitmqConn,
			closeRedisClient,
			closePgxPool,
			closeLogger,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger()
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initTokenRepository() {
	switch deps.Config.TokenStore {
	case config.TokenStoreRedis:
		deps.TokenRepository = redistoken.NewRedisRepository(deps.Redis)
	default:
		deps.TokenRepository = dbtoken.NewPgxRepository(deps.DB)
	}
	deps.Logger.Info(
		context.Background(),
		"Token store initialized.",
		dl.Entry("backend", deps.Config.TokenStore),
	)
}

func (deps *Deps) initRabbitmqTokenNotificationPublisher() func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	err = rabbitmqChannel.ExchangeDeclare(
		deps.Config.RabbitmqTokenNotificationExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ exchange.", dl.Entry("err", err))
		panic(err)
	}
	_, err = rabbitmqChannel.QueueDeclare(
		deps.Config.RabbitmqTokenNotificationQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}
	if err := rabbitmqChannel.QueueBind(
		deps.Config.RabbitmqTokenNotificationQueue,
		deps.Config.RabbitmqTokenNotificationRoutingKey,
		deps.Config.RabbitmqTokenNotificationExchange,
		false,
		nil,
	); err != nil {
		deps.Logger.Error(context.Background(), "Could not bind queue to RabbitMQ exchange.", dl.Entry("err", err))
		panic(err)
	}

	deps.TokenNotificationPublisher = tokennotification.NewRabbitMQ(
		deps.Logger,
		rabbitmqChannel,
		deps.Config.RabbitmqTokenNotificationExchange,
		deps.Config.RabbitmqTokenNotificationRoutingKey,
	)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down token notification publisher.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Token notification publisher shut down.")
	}
}
