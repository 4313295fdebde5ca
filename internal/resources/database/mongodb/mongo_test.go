package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

type fakeCollection struct {
	docs []interface{}
	err  error
}

func (f *fakeCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, document)
	return &mongo.InsertOneResult{InsertedID: len(f.docs)}, nil
}

func TestSensorRepositoryInsertsDocument(t *testing.T) {
	coll := &fakeCollection{}
	repo := &SensorRepository{&MongoRepository{databaseName: "db", collectionName: "sensors", collection: coll}}

	rec := entities.SensorRecord{DateTime: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), TempInDeciC: 180, RainOut: true}
	if err := repo.InsertSensor(context.Background(), rec); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(coll.docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(coll.docs))
	}

	raw, err := bson.Marshal(coll.docs[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"dateTime", "tempIn", "tempOut", "rainOut", "windSpeedMs", "humOutPerc"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("stored document is missing %q: %v", key, doc)
		}
	}
	if doc["tempIn"] != int64(180) || doc["rainOut"] != true {
		t.Fatalf("unexpected values: %v", doc)
	}
}

func TestCommandRepositoryWrapsErrors(t *testing.T) {
	cause := errors.New("no primary")
	repo := &CommandRepository{&MongoRepository{databaseName: "db", collectionName: "thermostat", collection: &fakeCollection{err: cause}}}

	err := repo.InsertCommand(context.Background(), entities.CommandRecord{ThermostatMode: 1})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestNewRepositoriesBindCollections(t *testing.T) {
	ctx := context.Background()
	// mongo.Connect does not dial; no server is needed.
	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer Disconnect(ctx, client)

	sensors := NewSensorRepository(client, "hvac", "sensors")
	commands := NewCommandRepository(client, "hvac", "thermostat")

	for want, repo := range map[string]*MongoRepository{"sensors": sensors.MongoRepository, "thermostat": commands.MongoRepository} {
		coll, ok := repo.collection.(*mongo.Collection)
		if !ok {
			t.Fatalf("%s: unexpected collection type %T", want, repo.collection)
		}
		if coll.Name() != want || coll.Database().Name() != "hvac" {
			t.Fatalf("bound to %s.%s, want hvac.%s", coll.Database().Name(), coll.Name(), want)
		}
	}
}
