//go:build api

// Package testserver provides a fully wired test server for API integration tests.
package testserver

import (
	"context"
	"fmt"
	"time"

	"carpool/internal/archive"
	"carpool/internal/board"
	"carpool/internal/clock"
	"carpool/internal/directory"
	"carpool/internal/handler"
	"carpool/internal/metrics"
	"carpool/internal/queue"
	"carpool/internal/router"
	"carpool/internal/service"
	"carpool/internal/storage"
	"carpool/internal/store"
	"carpool/pkg/auth"
	"carpool/test/api/testdb"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TestAccessTokenSecret is the JWT secret used in tests.
	TestAccessTokenSecret = "test-secret-key-for-api-tests"
	// TestAccessTokenExpiry is the access token expiry time used in tests.
	TestAccessTokenExpiry = 15 * time.Minute
)

// TestMorning is where the server clock starts for every test.
var TestMorning = time.Date(2024, 1, 15, 7, 30, 0, 0, time.UTC)

// TestServer holds all dependencies for API integration tests.
type TestServer struct {
	// Router is the Gin engine for making HTTP requests.
	Router *gin.Engine

	// Containers
	Redis *testdb.RedisContainer
	MinIO *testdb.MinIOContainer

	// Shared across rebuilds
	Store  *store.Redis
	S3     *storage.S3Client
	Tokens *auth.JWTManager
	Clock  *clock.Manual

	// Rebuilt by Reset so every test starts from what the store holds
	Directory *directory.Directory
	Board     *board.Board
	Metrics   *metrics.Metrics

	processor *queue.Processor
	cancel    context.CancelFunc
}

// New starts the containers and wires the application against them.
func New(ctx context.Context) (*TestServer, error) {
	gin.SetMode(gin.TestMode)

	redisContainer, err := testdb.SetupRedis(ctx)
	if err != nil {
		return nil, err
	}

	minioContainer, err := testdb.SetupMinIO(ctx)
	if err != nil {
		_ = redisContainer.Cleanup(ctx)
		return nil, err
	}

	ts := &TestServer{
		Redis:  redisContainer,
		MinIO:  minioContainer,
		Tokens: auth.NewJWTManager(TestAccessTokenSecret, TestAccessTokenExpiry),
		Clock:  clock.NewManual(TestMorning),
	}

	ts.Store, err = store.NewRedis(redisContainer.URI, zap.NewNop())
	if err != nil {
		ts.Cleanup(ctx)
		return nil, fmt.Errorf("connect store: %w", err)
	}

	ts.S3, err = storage.NewS3Client(ctx, storage.Options{
		Endpoint:  minioContainer.Endpoint,
		AccessKey: testdb.MinIOAccessKey,
		SecretKey: testdb.MinIOSecretKey,
		Bucket:    minioContainer.Bucket,
	}, zap.NewNop())
	if err != nil {
		ts.Cleanup(ctx)
		return nil, fmt.Errorf("connect s3: %w", err)
	}

	if err := ts.Reset(ctx); err != nil {
		ts.Cleanup(ctx)
		return nil, err
	}
	return ts, nil
}

// Reset rebuilds the directory, board, archive pipeline and router from
// whatever the store currently holds, as a process restart would.
func (ts *TestServer) Reset(ctx context.Context) error {
	ts.stopArchive()

	log := zap.NewNop()
	ts.Metrics = metrics.New(metrics.DefaultPrefix)

	ts.Directory = directory.New(ts.Store, log,
		directory.WithClock(ts.Clock.Now),
		directory.WithHasher(auth.BcryptHasher{Cost: bcrypt.MinCost}),
	)
	ts.Directory.Subscribe(ts.Metrics.Observe)

	ts.Board = board.New(ts.Store, log,
		board.WithClock(ts.Clock.Now),
		board.WithLocation(time.UTC),
	)
	ts.Board.Subscribe(ts.Metrics.Observe)

	archiveQueue := queue.NewMemoryQueue(16)
	ts.processor = queue.NewProcessor(archiveQueue, archive.NewUploader(ts.S3, ts.Clock.Now), log, 2,
		queue.WithRetryDelay(50*time.Millisecond),
		queue.WithCompletionHook(ts.Metrics.ArchiveDone),
	)
	ts.Board.Subscribe(archive.NewEnqueuer(archiveQueue, time.UTC, log).Handle)

	workerCtx, cancel := context.WithCancel(context.Background())
	ts.cancel = cancel
	ts.processor.Start(workerCtx)

	if err := ts.Directory.Load(ctx); err != nil {
		return fmt.Errorf("load directory: %w", err)
	}
	if err := ts.Board.Load(ctx); err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	ts.Router = router.Setup(&router.Config{
		AuthHandler: handler.NewAuthHandler(service.NewAuthService(service.AuthServiceConfig{
			Directory:      ts.Directory,
			Tokens:         ts.Tokens,
			AccessTokenTTL: TestAccessTokenExpiry,
		})),
		RideHandler: handler.NewRideHandler(service.NewRideService(ts.Board, ts.Clock.Now)),
		Tokens:      ts.Tokens,
		Lookup:      ts.Directory,
		Metrics:     ts.Metrics,
		Logger:      log,
	})
	return nil
}

func (ts *TestServer) stopArchive() {
	if ts.processor == nil {
		return
	}
	ts.processor.Stop()
	ts.cancel()
	ts.processor = nil
}

// Cleanup stops the archive workers and terminates all containers.
func (ts *TestServer) Cleanup(ctx context.Context) {
	ts.stopArchive()
	if ts.Store != nil {
		ts.Store.Close()
	}
	if ts.MinIO != nil {
		_ = ts.MinIO.Cleanup(ctx)
	}
	if ts.Redis != nil {
		_ = ts.Redis.Cleanup(ctx)
	}
}
