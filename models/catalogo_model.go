package models

// Paco é uma linha da tabela de localizações (aba "Paco" local ou "paco" no
// Google Sheets). Serial é a chave de busca; a primeira ocorrência vence.
type Paco struct {
	Serial      string `json:"serial"`
	Maquina     string `json:"maquina"`
	Posto       string `json:"posto"`
	Coordenada  string `json:"coordenada"`
	Modelo      string `json:"modelo"`
	OT          string `json:"ot"`
	Semiacabado string `json:"semiacabado"`
	Pagoda      string `json:"pagoda"`
}
