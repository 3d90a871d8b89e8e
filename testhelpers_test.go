//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nusastay/service-rental/internal/application"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	"github.com/nusastay/service-rental/internal/domain/catalog"
	"github.com/nusastay/service-rental/internal/events"
	"github.com/nusastay/service-rental/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a
// connected GORM DB with the schema and overlap constraint in place.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, repository.Migrate(db))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers,
		events.TopicBookingEvents, events.TopicPaymentEvents, events.TopicHousekeepingEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// newBookingService wires a BookingService against the test containers.
func newBookingService(db *gorm.DB, brokers []string) (*application.BookingService, func()) {
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	producer := events.NewProducer(brokers, "service-rental-test", logger)

	svc := application.NewBookingService(
		bookingRepo,
		serviceRepo,
		bookingDomain.NewStandardPricingCalculator(),
		bookingDomain.NewUnitOverlapPolicy(false),
		producer,
		"628111222333",
		logger,
	)
	return svc, func() { _ = producer.Close() }
}

// seedService inserts an active service with the given billing unit and
// returns its ID.
func seedService(t *testing.T, db *gorm.DB, price int64, unit catalog.Unit) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	model := repository.ServiceModel{
		ID:        uuid.New(),
		Name:      "Deluxe Room",
		Slug:      fmt.Sprintf("deluxe-room-%s", uuid.New().String()[:8]),
		Price:     price,
		Unit:      string(unit),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed service")
	return model.ID
}

// seedConfirmedBooking inserts a fully paid, confirmed booking.
func seedConfirmedBooking(t *testing.T, db *gorm.DB, bookingID, serviceID, ownerID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	model := repository.BookingModel{
		ID:            bookingID,
		BookingNumber: fmt.Sprintf("RB-%s", uuid.New().String()[:6]),
		OwnerID:       &ownerID,
		ServiceID:     serviceID,
		Unit:          string(catalog.UnitPerDay),
		UnitPrice:     100_000,
		StartTime:     now.AddDate(0, 0, -3),
		EndTime:       now.AddDate(0, 0, -1),
		TotalPrice:    200_000,
		TotalPaid:     200_000,
		Status:        string(bookingDomain.StatusConfirmed),
		PaymentStatus: string(bookingDomain.PaymentPaid),
		CustomerName:  "Rina",
		CustomerPhone: "+628123456789",
		CustomerEmail: "rina@example.com",
		Version:       3,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := events.NewProducer(brokers, "service-housekeeping", logger)
	defer func() { _ = producer.Close() }()

	err := producer.Publish(context.Background(), topic, eventType, uuid.NewString(), data)
	require.NoError(t, err, "failed to publish event")
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("id = ?", bookingID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
