package api

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/rohits-web03/codedrop/docs"
	"github.com/rohits-web03/codedrop/internal/api/handlers"
	"github.com/rohits-web03/codedrop/internal/api/middleware"
	"github.com/rohits-web03/codedrop/internal/storage"
)

type RouterConfig struct {
	Transfers      handlers.Transfers
	MaxUploadBytes int64
	// LocalBlobs is set only when files live on the local filesystem backend.
	LocalBlobs *storage.LocalStore
	Cors       cors.Options
	Logger     *zap.Logger
}

func SetupRouter(rc RouterConfig) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(rc.Cors)

	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	transferHandler := handlers.NewTransferHandler(rc.Transfers, rc.MaxUploadBytes)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /transfers", transferHandler.UploadTransfer)
	apiMux.HandleFunc("GET /transfers/{code}", transferHandler.GetTransfer)

	if rc.LocalBlobs != nil {
		blobHandler := handlers.NewBlobHandler(rc.LocalBlobs)
		apiMux.HandleFunc("GET /blobs/{token}", blobHandler.ServeBlob)
	}

	mainMux.Handle("/api/v1/",
		http.StripPrefix("/api/v1", apiMux),
	)

	rc.Logger.Info("router initialized", zap.Bool("local_blobs", rc.LocalBlobs != nil))
	handler := c.Handler(mainMux)
	handler = middleware.Logger(rc.Logger)(handler)
	return handler
}
