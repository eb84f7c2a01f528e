package utils

import (
	"strings"
	"testing"

	"pedidos-app/models"
)

func detalhesTeste() *models.PedidoDetalhes {
	return &models.PedidoDetalhes{
		Info: map[string]string{
			"Numero_Pedido": "REQ-007",
			"Data":          "2026-03-10 08:30:00",
			"Serial":        "ABC123",
			"Maquina":       "M1",
			"Posto":         "P1",
			"Coordenada":    "C1",
			"Modelo":        "X",
			"OT":            "OT-9",
			"Semiacabado":   "S1",
			"Pagoda":        "PG1",
			"Urgente":       "Sim",
		},
		Status: models.StatusPendente,
	}
}

func TestFormatarComprovante(t *testing.T) {
	texto := FormatarComprovante(detalhesTeste())

	for _, trecho := range []string{
		"PEDIDO DE REQUISIÇÃO",
		"Número: REQ-007",
		"Status: PENDENTE",
		"INFORMAÇÕES DO PRODUTO:",
		"Serial: ABC123",
		"DETALHES DO ITEM:",
		"FLUXO DE PROCESSAMENTO:",
		"Urgente: Sim",
		"Assinaturas:",
		"Separador: ___",
		"Coletador: ___",
		"Impresso em: ",
	} {
		if !strings.Contains(texto, trecho) {
			t.Errorf("comprovante sem o trecho %q", trecho)
		}
	}

	// sem separação registrada, as linhas não aparecem
	if strings.Contains(texto, "Responsável Separação") {
		t.Error("separação não registrada não deveria aparecer")
	}
}

func TestFormatarComprovanteComFluxo(t *testing.T) {
	d := detalhesTeste()
	d.Info["Responsavel_Separacao"] = "Ana"
	d.Info["Data_Separacao"] = "10/03/2026 09:00"
	d.Info["Responsavel_Coleta"] = "Beto"
	d.Info["Data_Coleta"] = "10/03/2026 10:00"
	d.Status = models.StatusConcluido

	texto := FormatarComprovante(d)
	for _, trecho := range []string{
		"Status: CONCLUÍDO",
		"Responsável Separação: Ana",
		"Data Separação: 10/03/2026 09:00",
		"Responsável Coleta: Beto",
		"Data Coleta: 10/03/2026 10:00",
	} {
		if !strings.Contains(texto, trecho) {
			t.Errorf("comprovante sem o trecho %q", trecho)
		}
	}
}

func TestGerarComprovantePDF(t *testing.T) {
	pdf, err := GerarComprovantePDF(FormatarComprovante(detalhesTeste()))
	if err != nil {
		t.Fatalf("GerarComprovantePDF: %v", err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Error("saída não começa com a assinatura %PDF")
	}
}
