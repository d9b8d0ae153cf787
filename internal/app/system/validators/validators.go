// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	chainstore "github.com/dalemusser/orgsync/internal/app/store/chains"
	employeestore "github.com/dalemusser/orgsync/internal/app/store/employees"
	importrunstore "github.com/dalemusser/orgsync/internal/app/store/importruns"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if commandErrorIs(err, noSuchCommand, notImplemented) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(employeestore.Collection, employeesSchema())
	ensure(chainstore.Collection, chainOfCommandSchema())
	ensure(importrunstore.Collection, importRunsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ensureCollection creates name unless it is already there. A concurrent
// create counts as success.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if commandErrorIs(err, namespaceExists) {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

// setValidator attaches schema with moderate validation, so documents
// written before the schema existed can still be updated.
func setValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

// commandErrorKind is a server error code plus message fragments that
// servers without that code (DocumentDB, older mongod) use instead.
type commandErrorKind struct {
	code    int32
	phrases []string
}

var (
	namespaceExists = commandErrorKind{48, []string{"already exists", "namespace exists"}}
	noSuchCommand   = commandErrorKind{59, []string{"no such command"}}
	notImplemented  = commandErrorKind{115, []string{"not implemented", "not supported"}}
)

func commandErrorIs(err error, kinds ...commandErrorKind) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	isCmd := errors.As(err, &ce)
	msg := strings.ToLower(err.Error())
	for _, k := range kinds {
		if isCmd && ce.Code == k.code {
			return true
		}
		for _, p := range k.phrases {
			if strings.Contains(msg, p) {
				return true
			}
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

// nonBlank matches a string with at least one non-space character.
var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

// manager is null, {id: ObjectId} or {pending: "email"}; never both keys.
func managerSchema() bson.M {
	return bson.M{
		"oneOf": bson.A{
			bson.M{"bsonType": "null"},
			bson.M{
				"bsonType":             "object",
				"required":             bson.A{"id"},
				"additionalProperties": false,
				"properties":           bson.M{"id": bson.M{"bsonType": "objectId"}},
			},
			bson.M{
				"bsonType":             "object",
				"required":             bson.A{"pending"},
				"additionalProperties": false,
				"properties":           bson.M{"pending": nonBlank},
			},
		},
	}
}

func employeesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"normalized_email", "attributes", "created_at", "updated_at"},
			"properties": bson.M{
				"normalized_email": nonBlank,
				"manager":          managerSchema(),
				"attributes":       bson.M{"bsonType": "object"},
				"name_ci":          bson.M{"bsonType": "string"},
				"created_at":       bson.M{"bsonType": "date"},
				"updated_at":       bson.M{"bsonType": "date"},
			},
		},
	}
}

func chainOfCommandSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "chain_of_command"},
			"properties": bson.M{
				"user_id": bson.M{"bsonType": "objectId"},
				"chain_of_command": bson.M{
					"bsonType": "array",
					"items":    bson.M{"bsonType": "objectId"},
				},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func importRunsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"source", "num_created", "num_updated", "started_at"},
			"properties": bson.M{
				"source":      bson.M{"bsonType": "string"},
				"rows":        bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"num_created": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"num_updated": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"errors":      bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"started_at":  bson.M{"bsonType": "date"},
				"duration_ms": bson.M{"bsonType": bson.A{"int", "long"}},
			},
		},
	}
}
