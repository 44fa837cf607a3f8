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

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/repository/models"
	mongotool "github.com/rudderci/rudder/pkg/tool/mongo"
)

type ListWorkflowTaskOption struct {
	WorkflowName string
	Limit        int
	Skip         int
}

type WorkflowTaskColl struct {
	*mongo.Collection

	coll string
}

func NewWorkflowTaskColl() *WorkflowTaskColl {
	name := models.WorkflowTask{}.TableName()
	return &WorkflowTaskColl{Collection: mongotool.Database(config.MongoDatabase()).Collection(name), coll: name}
}

func (c *WorkflowTaskColl) GetCollectionName() string {
	return c.coll
}

func (c *WorkflowTaskColl) EnsureIndex(ctx context.Context) error {
	mod := []mongo.IndexModel{
		{
			Keys: bson.D{
				bson.E{Key: "run_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				bson.E{Key: "workflow_name", Value: 1},
				bson.E{Key: "task_id", Value: 1},
			},
			Options: options.Index().SetUnique(false),
		},
		{
			Keys:    bson.M{"create_time": 1},
			Options: options.Index().SetUnique(false),
		},
	}

	_, err := c.Indexes().CreateMany(ctx, mod)

	return err
}

func (c *WorkflowTaskColl) Create(ctx context.Context, task *models.WorkflowTask) error {
	_, err := c.InsertOne(ctx, task)
	return err
}

func (c *WorkflowTaskColl) Find(ctx context.Context, runID string) (*models.WorkflowTask, error) {
	resp := &models.WorkflowTask{}
	query := bson.M{"run_id": runID}
	err := c.FindOne(ctx, query).Decode(resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *WorkflowTaskColl) Update(ctx context.Context, task *models.WorkflowTask) error {
	query := bson.M{"run_id": task.RunID}
	change := bson.M{"$set": task}
	_, err := c.UpdateOne(ctx, query, change)

	return err
}

func (c *WorkflowTaskColl) List(ctx context.Context, opt *ListWorkflowTaskOption) ([]*models.WorkflowTask, error) {
	query := bson.M{}
	if opt.WorkflowName != "" {
		query["workflow_name"] = opt.WorkflowName
	}

	opts := options.Find().SetSort(bson.D{{Key: "create_time", Value: -1}})
	if opt.Limit > 0 {
		opts = opts.SetLimit(int64(opt.Limit))
	}
	if opt.Skip > 0 {
		opts = opts.SetSkip(int64(opt.Skip))
	}

	cursor, err := c.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	resp := []*models.WorkflowTask{}
	if err := cursor.All(ctx, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// NextTaskID returns the next sequence number for the workflow.
func (c *WorkflowTaskColl) NextTaskID(ctx context.Context, workflowName string) (int64, error) {
	query := bson.M{"workflow_name": workflowName}
	opts := options.FindOne().SetSort(bson.D{{Key: "task_id", Value: -1}})

	latest := &models.WorkflowTask{}
	err := c.FindOne(ctx, query, opts).Decode(latest)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 1, nil
		}
		return 0, err
	}

	return latest.TaskID + 1, nil
}
