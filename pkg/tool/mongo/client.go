/*
Copyright 2025 The Rudder Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package mongo

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/tool/log"
)

var once sync.Once
var client *mongo.Client

func Database(name string) *mongo.Database {
	return Client().Database(name)
}

func Client() *mongo.Client {
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI()))
		if err != nil {
			log.Panicf("Failed to connect to mongo, err: %v", err)
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			log.Panicf("Failed to ping mongo, err: %v", err)
		}
		client = c
	})

	return client
}

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
