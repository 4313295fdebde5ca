// internal/resources/database/mongodb/mongo.go
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

// inserter is the subset of *mongo.Collection used by the repositories.
type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// Connect abre o cliente e confirma a conexão com um ping no primário.
func Connect(ctx context.Context, connectionString string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(connectionString)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao MongoDB: %w", err)
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("falha ao fazer ping no MongoDB: %w", err)
	}

	slog.Info("conectado com sucesso ao MongoDB")
	return client, nil
}

type MongoRepository struct {
	databaseName   string
	collectionName string
	collection     inserter
}

func newRepository(client *mongo.Client, databaseName, collectionName string) *MongoRepository {
	return &MongoRepository{
		databaseName:   databaseName,
		collectionName: collectionName,
		collection:     client.Database(databaseName).Collection(collectionName),
	}
}

func (r *MongoRepository) insert(ctx context.Context, document interface{}) error {
	res, err := r.collection.InsertOne(ctx, document)
	if err != nil {
		return fmt.Errorf("falha ao inserir documento na coleção '%s' do banco '%s': %w", r.collectionName, r.databaseName, err)
	}

	slog.Debug("documento inserido", "collection", r.collectionName, "id", res.InsertedID)
	return nil
}

// SensorRepository grava os registros ambientais.
type SensorRepository struct {
	*MongoRepository
}

func NewSensorRepository(client *mongo.Client, databaseName, collectionName string) *SensorRepository {
	return &SensorRepository{newRepository(client, databaseName, collectionName)}
}

func (r *SensorRepository) InsertSensor(ctx context.Context, record entities.SensorRecord) error {
	return r.insert(ctx, record)
}

// CommandRepository grava o retorno do termostato.
type CommandRepository struct {
	*MongoRepository
}

func NewCommandRepository(client *mongo.Client, databaseName, collectionName string) *CommandRepository {
	return &CommandRepository{newRepository(client, databaseName, collectionName)}
}

func (r *CommandRepository) InsertCommand(ctx context.Context, record entities.CommandRecord) error {
	return r.insert(ctx, record)
}

// Disconnect closes the shared client.
func Disconnect(ctx context.Context, client *mongo.Client) error {
	if client != nil {
		return client.Disconnect(ctx)
	}
	return nil
}
