// cmd/lambda/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/app"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/httpapi"
)

func main() {
	cfg, err := app.Bootstrap()
	if err != nil {
		slog.Error("erro de configuração", "error", err)
		os.Exit(1)
	}

	// A conexão com o MongoDB é reaproveitada entre invocações do mesmo ambiente.
	application, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("erro fatal ao inicializar o serviço", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	fmt.Print(application.Banner())
	lambda.Start(httpapi.LambdaHandler(application.Handler))
}
