// Command render turns an exam document stored as JSON into its printable
// PDF and/or read-only HTML, without a database.
//
//	render -in prova.json -pdf prova.pdf -html prova.html
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
	"github.com/stemsi/exstem-paper/internal/static"
)

func main() {
	var (
		in          string
		pdfOut      string
		htmlOut     string
		showAnswers bool
		watermark   bool
	)
	flag.StringVar(&in, "in", "-", "Exam document JSON (- for stdin)")
	flag.StringVar(&pdfOut, "pdf", "", "Write the paginated PDF here")
	flag.StringVar(&htmlOut, "html", "", "Write the static HTML here")
	flag.BoolVar(&showAnswers, "answers", false, "Highlight answers in the HTML")
	flag.BoolVar(&watermark, "watermark", false, "Stamp the free-plan watermark when the document has none")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if pdfOut == "" && htmlOut == "" {
		fmt.Fprintln(os.Stderr, "Usage: render [flags]; at least one of -pdf or -html is required")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := readDocument(in)
	if err != nil {
		log.Fatal().Err(err).Str("in", in).Msg("Failed to read document")
	}
	if res := editor.Validate(editor.StripWatermark(doc.Blocks)); !res.Applied {
		log.Fatal().Str("code", string(res.Code)).Msg(res.Reason)
	}

	var opts []editor.Option
	if watermark {
		opts = append(opts, editor.WithWatermark(cfg.WatermarkText))
	}
	doc.Blocks = editor.NewSurface(doc.Blocks, opts...).Blocks()

	if pdfOut != "" {
		fonts, err := paper.LoadFonts(cfg.PDFFontPath, cfg.PDFFontBoldPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load PDF fonts")
		}
		r := paper.NewRenderer(fonts).WithWatermark(cfg.WatermarkText)
		if err := writeFile(pdfOut, func(w io.Writer) error { return r.Render(ctx, doc, w) }); err != nil {
			log.Fatal().Err(err).Str("out", pdfOut).Msg("Failed to render PDF")
		}
		log.Info().Str("out", pdfOut).Msg("PDF written")
	}

	if htmlOut != "" {
		opts := static.Options{ShowAnswers: showAnswers}
		if err := writeFile(htmlOut, func(w io.Writer) error { return static.Render(w, doc, opts) }); err != nil {
			log.Fatal().Err(err).Str("out", htmlOut).Msg("Failed to render HTML")
		}
		log.Info().Str("out", htmlOut).Msg("HTML written")
	}
}

func readDocument(path string) (model.Document, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return model.Document{}, err
		}
		defer f.Close()
		r = f
	}

	var doc model.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// writeFile renders into path, removing the file again when rendering fails.
func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
