package models

import (
	"errors"
	"strings"
	"time"
)

// Status canônicos persistidos nas planilhas (local e Google Sheets)
const (
	StatusPendente  = "PENDENTE"
	StatusProcesso  = "PROCESSO"
	StatusConcluido = "CONCLUÍDO"
)

// Erros de negócio; os controllers mapeiam via errors.Is
var (
	ErrSerialNaoEncontrado  = errors.New("serial não encontrado na planilha de localizações")
	ErrPedidoDuplicado      = errors.New("já existe um pedido PENDENTE com o mesmo serial, máquina, posto e coordenada")
	ErrStatusInvalido       = errors.New("status inválido: permitidos PENDENTE, PROCESSO, CONCLUÍDO")
	ErrPedidoNaoEncontrado  = errors.New("pedido não encontrado")
	ErrArquivoPedidos       = errors.New("arquivo de pedidos indisponível")
	ErrSheetsNaoConfigurado = errors.New("Google Sheets não configurado")
)

// NormalizarStatus valida e converte o status para o valor canônico em maiúsculas.
// A máquina de estados aceita qualquer um dos três valores a partir de qualquer
// status atual (o seletor da tela de revisão é livre); só a pertinência é validada.
func NormalizarStatus(status string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(status))
	switch s {
	case StatusPendente, StatusProcesso, StatusConcluido:
		return s, nil
	}
	return "", ErrStatusInvalido
}

type Pedido struct {
	NumeroPedido            string    `json:"numero_pedido"`
	Data                    time.Time `json:"data"`
	Serial                  string    `json:"serial"`
	Maquina                 string    `json:"maquina"`
	Posto                   string    `json:"posto"`
	Coordenada              string    `json:"coordenada"`
	Modelo                  string    `json:"modelo"`
	OT                      string    `json:"ot"`
	Semiacabado             string    `json:"semiacabado"`
	Pagoda                  string    `json:"pagoda"`
	Solicitante             string    `json:"solicitante"`
	Observacoes             string    `json:"observacoes"`
	Urgente                 string    `json:"urgente"`
	Status                  string    `json:"status"`
	UltimaAtualizacao       string    `json:"ultima_atualizacao"`
	ResponsavelAtualizacao  string    `json:"responsavel_atualizacao"`
	ResponsavelSeparacao    string    `json:"responsavel_separacao"`
	DataSeparacao           string    `json:"data_separacao"`
	ResponsavelColeta       string    `json:"responsavel_coleta"`
	DataColeta              string    `json:"data_coleta"`
}

type PedidoItem struct {
	NumeroPedido string `json:"numero_pedido"`
	Serial       string `json:"serial"`
	Quantidade   int    `json:"quantidade"`
}

// PedidoDetalhes combina a linha da aba Pedidos com os itens da aba Itens
type PedidoDetalhes struct {
	Info   map[string]string `json:"info"`
	Itens  []PedidoItem      `json:"itens"`
	Status string            `json:"status"`
}
