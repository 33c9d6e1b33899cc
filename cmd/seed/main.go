package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/metakai1/landsearch/internal/config"
	"github.com/metakai1/landsearch/internal/model"
	"github.com/metakai1/landsearch/internal/repository"
)

// seed loads land plot records from a CSV export into PostgreSQL. Rows are
// upserted, so re-running on the same file is safe.
func main() {
	var (
		filePath = flag.String("file", "", "path to the land plot CSV export")
		dryRun   = flag.Bool("dry-run", false, "parse and validate without writing to the database")
		embed    = flag.Bool("embed", false, "compute description embeddings after seeding (requires OPENAI_API_KEY)")
	)
	flag.Parse()

	if *filePath == "" {
		log.Fatal("usage: seed -file <plots.csv> [-dry-run] [-embed]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	records, err := loadCSV(*filePath)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *filePath, err)
	}
	log.Printf("Parsed %d plot records from %s", len(records), *filePath)

	if *dryRun {
		log.Println("Dry run, not writing to database")
		return
	}

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.AgentID,
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	inserted := 0
	for i := range records {
		if err := repo.CreateProperty(ctx, &records[i]); err != nil {
			log.Printf("Skipping %s: %v", records[i].Metadata.Name, err)
			continue
		}
		inserted++
	}
	log.Printf("Seeded %d/%d plots", inserted, len(records))

	if *embed {
		if !cfg.Extractor.Enabled {
			log.Fatal("Embedding requested but OPENAI_API_KEY is not set")
		}
		if err := embedDescriptions(ctx, cfg, repo, records); err != nil {
			log.Fatalf("Failed to embed descriptions: %v", err)
		}
	}
}

// embedDescriptions computes an embedding per plot description in batches and
// stores it alongside the record, feeding the dormant vector search path.
func embedDescriptions(ctx context.Context, cfg *config.Config, repo *repository.PostgresRepository, records []model.PropertyRecord) error {
	clientCfg := openai.DefaultConfig(cfg.Extractor.APIKey)
	if cfg.Extractor.BaseURL != "" {
		clientCfg.BaseURL = cfg.Extractor.BaseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	const batchSize = 100
	embedded := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		inputs := make([]string, len(batch))
		for i, rec := range batch {
			inputs[i] = rec.Description
		}

		// The land_plots.embedding column is vector(1024).
		resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model:      openai.SmallEmbedding3,
			Input:      inputs,
			Dimensions: 1024,
		})
		if err != nil {
			return fmt.Errorf("embedding batch at %d: %w", start, err)
		}
		if len(resp.Data) != len(batch) {
			return fmt.Errorf("embedding batch at %d: got %d vectors for %d inputs", start, len(resp.Data), len(batch))
		}

		for i, item := range resp.Data {
			if err := repo.UpdateEmbedding(ctx, batch[i].ID, item.Embedding); err != nil {
				return err
			}
			embedded++
		}
	}
	log.Printf("Embedded %d plot descriptions", embedded)
	return nil
}

func loadCSV(path string) ([]model.PropertyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	required := []string{"Name", "Neighborhood", "Zoning Type", "Plot Size"}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var records []model.PropertyRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		rec, err := parseRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, *rec)
	}
	return records, nil
}

func parseRow(cols map[string]int, row []string) (*model.PropertyRecord, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var parseErr error
	// Numeric cells must parse: a malformed value silently becoming 0 would
	// pass validation and corrupt the record. Empty cells stay 0.
	intField := func(name string) int {
		cell := field(name)
		if cell == "" {
			return 0
		}
		v, err := strconv.Atoi(cell)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("column %q: invalid integer %q", name, cell)
		}
		return v
	}
	floatField := func(name string) float64 {
		cell := field(name)
		if cell == "" {
			return 0
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("column %q: invalid number %q", name, cell)
		}
		return v
	}

	name := field("Name")
	if name == "" {
		return nil, fmt.Errorf("empty plot name")
	}

	zoning, ok := model.CanonicalZoning(field("Zoning Type"))
	if !ok {
		return nil, fmt.Errorf("unknown zoning type %q", field("Zoning Type"))
	}
	plotSize, ok := model.CanonicalPlotSize(field("Plot Size"))
	if !ok {
		return nil, fmt.Errorf("unknown plot size %q", field("Plot Size"))
	}
	buildingType, ok := model.CanonicalBuildingType(field("Building Size"))
	if !ok {
		return nil, fmt.Errorf("unknown building size %q", field("Building Size"))
	}

	oceanMeters := intField("Distance to Ocean (m)")
	bayMeters := intField("Distance to Bay (m)")

	metadata := model.PlotMetadata{
		Rank:         intField("Rank"),
		Name:         name,
		Neighborhood: field("Neighborhood"),
		Zoning:       zoning,
		PlotSize:     plotSize,
		BuildingType: buildingType,
		Distances: model.Distances{
			Ocean: model.Distance{Meters: oceanMeters, Category: model.DistanceCategoryFor(oceanMeters)},
			Bay:   model.Distance{Meters: bayMeters, Category: model.DistanceCategoryFor(bayMeters)},
		},
		Building: model.Building{
			Floors: model.Range{
				Min: floatField("Min # of Floors"),
				Max: floatField("Max # of Floors"),
			},
			Height: model.Range{
				Min: floatField("Min Building Height (m)"),
				Max: floatField("Max Building Height (m)"),
			},
		},
		PlotArea: floatField("Plot Area (m²)"),
		TokenID:  field("Token ID"),
	}
	if parseErr != nil {
		return nil, parseErr
	}

	rec := &model.PropertyRecord{
		// Deterministic per plot name so re-seeding updates in place.
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("landsearch/"+name)).String(),
		Metadata: metadata,
	}
	if err := rec.Metadata.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
