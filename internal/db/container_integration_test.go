//go:build integration

package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func init() {
	startMongo = func(t *testing.T) string {
		t.Helper()
		ctx := context.Background()

		mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:6",
				ExposedPorts: []string{"27017/tcp"},
				WaitingFor:   wait.ForListeningPort("27017/tcp"),
			},
			Started: true,
		})
		if err != nil {
			t.Fatalf("failed to initialize mongo testcontainer: %v", err)
		}
		t.Cleanup(func() { _ = mongoC.Terminate(ctx) })

		host, err := mongoC.Host(ctx)
		if err != nil {
			t.Fatal(err)
		}
		port, err := mongoC.MappedPort(ctx, "27017/tcp")
		if err != nil {
			t.Fatal(err)
		}
		return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	}
}
