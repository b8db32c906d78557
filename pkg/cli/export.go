package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/cli/config"
	"github.com/secmon-lab/actionboard/pkg/usecase"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
	"github.com/secmon-lab/actionboard/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var workspaceID string
	var output string
	var pageSize int
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "workspace",
			Aliases:     []string{"w"},
			Usage:       "Workspace ID",
			Required:    true,
			Destination: &workspaceID,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Destination of the JSON lines: '-' for stdout, a file path, or gs://bucket/object",
			Value:       "-",
			Destination: &output,
		},
		&cli.IntFlag{
			Name:        "page-size",
			Usage:       "Movements read per transaction",
			Value:       usecase.DefaultExportPageSize,
			Destination: &pageSize,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export the movement history of a workspace as JSON lines",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			w, err := openExportWriter(ctx, output, c.Root().Writer)
			if err != nil {
				return err
			}

			uc := usecase.New(repo, usecase.WithExportOptions(usecase.WithExportPageSize(pageSize)))
			n, err := uc.Export.ExportMovements(ctx, workspaceID, w)
			if err != nil {
				safe.Close(ctx, w)
				return goerr.Wrap(err, "failed to export movements", goerr.V("workspace_id", workspaceID))
			}

			// Object uploads are committed on Close
			if err := w.Close(); err != nil {
				return goerr.Wrap(err, "failed to finalize export", goerr.V("output", output))
			}

			logging.Default().Info("Movements exported",
				"workspace_id", workspaceID,
				"count", n,
				"output", output)
			return nil
		},
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func openExportWriter(ctx context.Context, output string, stdout io.Writer) (io.WriteCloser, error) {
	if output == "-" || output == "" {
		return nopWriteCloser{Writer: stdout}, nil
	}

	if path, ok := strings.CutPrefix(output, "gs://"); ok {
		bucket, object, ok := strings.Cut(path, "/")
		if !ok || bucket == "" || object == "" {
			return nil, goerr.New("invalid Cloud Storage URL, expected gs://bucket/object", goerr.V("output", output))
		}
		return newObjectWriter(ctx, bucket, object)
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	f, err := os.Create(output)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create output file", goerr.V("output", output))
	}
	return f, nil
}

// objectWriter closes the storage client together with the upload
type objectWriter struct {
	*storage.Writer
	client *storage.Client
}

func (w *objectWriter) Close() error {
	defer func() {
		_ = w.client.Close()
	}()
	if err := w.Writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to upload object")
	}
	return nil
}

func newObjectWriter(ctx context.Context, bucket, object string) (io.WriteCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/x-ndjson"
	return &objectWriter{Writer: w, client: client}, nil
}
