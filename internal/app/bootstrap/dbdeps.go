// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend connections for the app. NATS is nil when
// nats_url is blank; everything that publishes checks for that.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	NATS          *nats.Conn
}
