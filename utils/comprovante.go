package utils

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"pedidos-app/models"
)

const linhaSeparadora = "-------------------------------------------------"

// FormatarComprovante monta o texto do comprovante de requisição para
// impressão na bancada.
func FormatarComprovante(pedido *models.PedidoDetalhes) string {
	info := pedido.Info

	var b strings.Builder
	b.WriteString("=================================================\n")
	b.WriteString("                PEDIDO DE REQUISIÇÃO\n")
	b.WriteString("=================================================\n")
	fmt.Fprintf(&b, "Número: %s\n", info["Numero_Pedido"])
	fmt.Fprintf(&b, "Data: %s\n", info["Data"])
	fmt.Fprintf(&b, "Status: %s\n", pedido.Status)

	b.WriteString("\nINFORMAÇÕES DO PRODUTO:\n")
	b.WriteString(linhaSeparadora + "\n")
	fmt.Fprintf(&b, "Serial: %s\n", info["Serial"])
	fmt.Fprintf(&b, "Máquina: %s\n", info["Maquina"])
	fmt.Fprintf(&b, "Posto: %s\n", info["Posto"])
	fmt.Fprintf(&b, "Coordenada: %s\n", info["Coordenada"])

	b.WriteString("\nDETALHES DO ITEM:\n")
	b.WriteString(linhaSeparadora + "\n")
	fmt.Fprintf(&b, "Modelo: %s\n", info["Modelo"])
	fmt.Fprintf(&b, "OT: %s\n", info["OT"])
	fmt.Fprintf(&b, "Semiacabado: %s\n", info["Semiacabado"])
	fmt.Fprintf(&b, "Pagoda: %s\n", info["Pagoda"])

	b.WriteString("\nFLUXO DE PROCESSAMENTO:\n")
	b.WriteString(linhaSeparadora + "\n")
	urgente := info["Urgente"]
	if urgente == "" {
		urgente = "Não"
	}
	fmt.Fprintf(&b, "Urgente: %s\n", urgente)

	if info["Responsavel_Separacao"] != "" {
		fmt.Fprintf(&b, "\nResponsável Separação: %s", info["Responsavel_Separacao"])
		fmt.Fprintf(&b, "\nData Separação: %s", info["Data_Separacao"])
	}
	if info["Responsavel_Coleta"] != "" {
		fmt.Fprintf(&b, "\nResponsável Coleta: %s", info["Responsavel_Coleta"])
		fmt.Fprintf(&b, "\nData Coleta: %s", info["Data_Coleta"])
	}

	b.WriteString("\n" + linhaSeparadora)
	b.WriteString("\n\nAssinaturas:\n")
	b.WriteString("\nSeparador: _____________________________")
	b.WriteString("\nColetador: _____________________________")
	fmt.Fprintf(&b, "\n\nImpresso em: %s", time.Now().Format("02/01/2006 15:04:05"))

	return b.String()
}

// GerarComprovantePDF renderiza o texto do comprovante em PDF (A4, fonte
// monoespaçada, como na impressora da bancada).
func GerarComprovantePDF(texto string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 10)

	for _, linha := range strings.Split(texto, "\n") {
		pdf.CellFormat(0, 5, tr(linha), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("erro ao gerar PDF do comprovante: %w", err)
	}
	return buf.Bytes(), nil
}
