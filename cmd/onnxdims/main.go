// Command onnxdims prints the graph inputs of an ONNX model as
// "-d <name> <shape>" flags, one per line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"

	"github.com/zerfoo/onnxdims/internal/config"
	"github.com/zerfoo/onnxdims/pkg/downloader"
	"github.com/zerfoo/onnxdims/pkg/importer"
	"github.com/zerfoo/onnxdims/pkg/inspector"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type args struct {
	ONNXFile string `arg:"positional,required" placeholder:"ONNXFILE" help:"input onnx file: a local path, an http(s) URL or hf://<org>/<repo>/<file>"`
}

func (args) Description() string {
	return "Print the inputs of an ONNX model as -d <name> <shape> flags."
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, getenv func(string) string, stdout, stderr io.Writer) int {
	var a args
	p, err := arg.NewParser(arg.Config{Program: "onnxdims"}, &a)
	if err != nil {
		return handleErr(stderr, err)
	}
	if err := p.Parse(argv); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			p.WriteHelp(stdout)
			return exitOK
		}
		p.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	cfg, err := config.FromEnv(getenv)
	if err != nil {
		return handleErr(stderr, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	d := downloader.NewDownloader(
		downloader.NewHuggingFaceSource(client, cfg.HFCDNURL, cfg.HFAPIKey),
		downloader.NewHTTPSource(client),
	)

	logger.Debug("loading model", "ref", a.ONNXFile)
	model, err := importer.Open(ctx, a.ONNXFile, d)
	if err != nil {
		return handleErr(stderr, err)
	}

	var opset int64
	if len(model.OpsetImport) > 0 {
		opset = model.OpsetImport[0].Version
	}
	g := model.GetGraph()
	logger.Info("loaded model",
		"ir_version", model.IRVersion,
		"opset", opset,
		"producer", model.ProducerName,
		"inputs", len(g.GetInput()),
	)

	if err := inspector.WriteInputFlags(stdout, model, logger); err != nil {
		return handleErr(stderr, err)
	}
	return exitOK
}

func handleErr(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}
