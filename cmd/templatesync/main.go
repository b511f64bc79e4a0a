// Command templatesync validates an API template definition file and
// publishes it to object storage, where the API picks it up at startup when
// API_TEMPLATES_OBJECT_KEY is set.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"respondapi/internal/apitemplate"
	"respondapi/internal/config"
	"respondapi/internal/logger"
	"respondapi/internal/service"
	"respondapi/internal/storage"
)

func main() {
	cfg := config.Load()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-key object-key] [-check] <templates.yaml>\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(flag.CommandLine.Output(), "\nValidate API templates and upload them to the configured MinIO bucket.\n\n")
		flag.PrintDefaults()
	}
	key := flag.String("key", cfg.Templates.ObjectKey, "object key to publish under")
	check := flag.Bool("check", false, "validate only, do not upload")
	timeout := flag.Duration("timeout", 30*time.Second, "upload timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.Setup(cfg.LogLevel)
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("read_templates_failed", "path", path, "error", err)
		os.Exit(1)
	}

	reg, err := apitemplate.Load(bytes.NewReader(data))
	if err != nil {
		log.Error("invalid_templates", "path", path, "error", err)
		os.Exit(1)
	}
	for _, m := range reg.Models() {
		names, _ := reg.Templates(m)
		log.Info("templates_valid", "model", m, "templates", names)
	}
	if *check {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Error("object_storage_unavailable", "error", err)
		os.Exit(1)
	}

	info, err := service.PublishTemplates(ctx, store, *key, data)
	if err != nil {
		log.Error("publish_templates_failed", "key", *key, "error", err)
		os.Exit(1)
	}
	log.Info("templates_published", "bucket", cfg.MinIO.Bucket, "key", info.Key, "size", info.Size, "etag", info.ETag)
}
