package agents

import (
	"os"
	"strings"

	"github.com/lewisedginton/zapbot/pkg/logger"
)

const defaultInstructions = "You help users send money by understanding their natural language requests. " +
	"Ask for confirmation before sending."

// loadInstructionFile returns the file's contents, or the default instructions
// when the file is missing or blank.
func loadInstructionFile(filename string, log logger.Logger) string {
	content, err := os.ReadFile(filename)
	if err != nil {
		log.Debug("Instruction file not loaded, using default instructions",
			logger.StringField("filename", filename),
			logger.ErrorField(err))
		return defaultInstructions
	}

	if strings.TrimSpace(string(content)) == "" {
		log.Warn("Instruction file is empty, using default instructions",
			logger.StringField("filename", filename))
		return defaultInstructions
	}

	log.Info("Loaded system instructions", logger.StringField("filename", filename))
	return string(content)
}
