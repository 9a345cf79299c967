package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QuestionSeed is one entry of the question seed file.
type QuestionSeed struct {
	Key          string `yaml:"key"`
	Text         string `yaml:"text"`
	Confidential bool   `yaml:"confidential"`
	Category     string `yaml:"category"`
}

// QuestionFile holds the parsed seed file.
type QuestionFile struct {
	Questions []QuestionSeed `yaml:"questions"`
}

// LoadQuestionFile reads and parses the questions YAML file used to seed an
// empty question store.
func LoadQuestionFile(path string) (*QuestionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file: %w", err)
	}

	var file QuestionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question YAML: %w", err)
	}

	return &file, nil
}
