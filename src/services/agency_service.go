// src/services/agency_service.go
package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/username/tourledger/src/logger"
	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/utils"
)

// LoadAgencyDirectory loads the configured agencies from a JSON file. The
// directory is returned to the caller and passed down explicitly; nothing
// keeps it as package state. Default percentages are clamped to [0,100] at
// this boundary.
func LoadAgencyDirectory(filePath string) (models.AgencyDirectory, error) {
	logger.L.Info("Loading agency directory", "path", filePath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read agency file %q: %w", filePath, err)
	}

	var agencies []models.Agency
	if err := json.Unmarshal(data, &agencies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agencies from %q: %w", filePath, err)
	}

	directory := make(models.AgencyDirectory, len(agencies))
	for _, agency := range agencies {
		if agency.ID == "" {
			logger.L.Warn("Skipping agency without ID", "name", agency.Name)
			continue
		}
		agency.DefaultPct = utils.ClampPct(agency.DefaultPct)
		directory[agency.ID] = agency
	}

	logger.L.Info("Agency directory loaded successfully.", "path", filePath, "agencyCount", len(directory))
	return directory, nil
}
