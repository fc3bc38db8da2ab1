// Package migration prepares a store for the contact form service.
package migration

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// codeNamespaceExists is returned by MongoDB when creating a collection that
// is already there.
const codeNamespaceExists = 48

// ContactSchema is the $jsonSchema validator installed on the contacts
// collection. It mirrors the validate tags of the contact model and puts
// no limit on the length of the text fields.
func ContactSchema() bson.M {
	text := bson.M{"bsonType": "string", "minLength": 1}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "subject", "message", "date"},
			"properties": bson.M{
				"name":    text,
				"email":   text,
				"subject": text,
				"message": text,
				"date":    bson.M{"bsonType": "date"},
			},
		},
	}
}

// MigrateMongo creates the contacts collection with its schema validator, or
// updates the validator of an existing collection, and makes sure listing by
// date is backed by an index.
func MigrateMongo(ctx context.Context, db *mongo.Database, collection string) error {
	err := db.CreateCollection(ctx, collection, options.CreateCollection().SetValidator(ContactSchema()))
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
		err = db.RunCommand(ctx, bson.D{
			{Key: "collMod", Value: collection},
			{Key: "validator", Value: ContactSchema()},
		}).Err()
	}
	if err != nil {
		return fmt.Errorf("installing validator on %s: %w", collection, err)
	}

	_, err = db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("date_desc"),
	})
	if err != nil {
		return fmt.Errorf("creating date index on %s: %w", collection, err)
	}
	return nil
}

// SplitStatements reads a SQL script line by line and returns its statements.
// A statement ends on the first line that contains a semicolon; lines are
// joined with a single space.
func SplitStatements(r io.Reader) ([]string, error) {
	var statements []string
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			statements = append(statements, strings.TrimSpace(builder.String()))
			builder = strings.Builder{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading SQL script: %w", err)
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements, nil
}

// MigrateSQL executes every statement of the script in order and stops at the
// first failure.
func MigrateSQL(ctx context.Context, db *sqlx.DB, script io.Reader) error {
	statements, err := SplitStatements(script)
	if err != nil {
		return err
	}
	for i, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("executing statement %d: %w", i+1, err)
		}
	}
	return nil
}
