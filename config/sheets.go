package config

import (
	"encoding/json"
	"os"
)

// SheetsConfig é o conteúdo do config.json: credenciais da service account e
// URL da planilha compartilhada. A ausência de qualquer campo não derruba o
// app; as operações remotas degradam para "não configurado".
type SheetsConfig struct {
	SheetsCredentials json.RawMessage `json:"sheets_credentials"`
	SheetsURL         string          `json:"sheets_url"`
}

const SheetsConfigFile = "config.json"

func LoadSheetsConfig(path string) (*SheetsConfig, error) {
	cfg := &SheetsConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Primeiro uso: grava um config.json vazio
			if err := SaveSheetsConfig(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func SaveSheetsConfig(path string, cfg *SheetsConfig) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
