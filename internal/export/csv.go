package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/ternarybob/indago/internal/models"
)

// csvHeader lists the flat per-keyword columns. Cluster aggregates repeat on
// every row so the file stands alone in a spreadsheet.
var csvHeader = []string{
	"Cluster ID",
	"Pillar Topic",
	"Keyword",
	"Search Volume",
	"Competition",
	"CPC Low",
	"CPC High",
	"Cluster Value Score",
	"Cluster Total Volume",
}

func renderCSV(result *models.ResearchResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, cluster := range result.Clusters {
		for _, keyword := range cluster.Keywords {
			record := []string{
				cluster.ID,
				cluster.PillarTopic,
				keyword.Text,
				strconv.Itoa(keyword.SearchVolume),
				string(keyword.Competition),
				fmt.Sprintf("%.2f", keyword.CPCLow),
				fmt.Sprintf("%.2f", keyword.CPCHigh),
				fmt.Sprintf("%.2f", cluster.ClusterValueScore),
				strconv.Itoa(cluster.TotalSearchVolume),
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
