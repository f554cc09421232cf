// Command evaluate scores local case files from the command line and
// prints the ranked batch result as JSON. Each file becomes one case; the
// filename (without extension) is used as the case title.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"lawassist-backend/extract"
	"lawassist-backend/llm"
	"lawassist-backend/service"
)

func main() {
	jurisdiction := flag.String("jurisdiction", "N/A", "jurisdiction applied to every case")
	caseType := flag.String("case-type", "Civil", "case type applied to every case (Civil, Criminal, Commercial, Arbitration)")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: evaluate [-jurisdiction X] [-case-type Y] file...")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	ctx := context.Background()
	provider, err := llm.NewProviderFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	evaluator := service.NewEvaluatorService(
		service.WithProvider(provider),
		service.WithTextExtractor(extract.NewFromEnv()),
	)

	req := service.BatchRequest{}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		name := filepath.Base(path)
		title := strings.TrimSuffix(name, filepath.Ext(name))

		req.Sources = append(req.Sources, service.CaseSource{Filename: name, Data: data})
		req.Titles = append(req.Titles, title)
		req.Jurisdictions = append(req.Jurisdictions, *jurisdiction)
		req.CaseTypes = append(req.CaseTypes, *caseType)
	}

	result, err := evaluator.EvaluateBatch(ctx, req)
	if err != nil {
		log.Fatalf("Batch evaluation rejected: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
