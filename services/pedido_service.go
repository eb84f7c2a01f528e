package services

import (
	"errors"
	"fmt"
	"time"

	"pedidos-app/models"
	"pedidos-app/repositories"
	"pedidos-app/utils"
)

// RemoteSync é o contrato do espelho remoto usado pelo motor de pedidos e
// pelo sincronizador de leituras (implementado por SheetsService; os testes
// usam um fake).
type RemoteSync interface {
	Conectado() bool
	SalvarPedidoCompleto(p *models.Pedido, itens []models.PedidoItem) error
	AtualizarStatusPedido(numeroPedido, novoStatus, ultimaAtualizacao, responsavel string) error
	GetPedidoDetalhes(numeroPedido string) (*models.PedidoDetalhes, error)
	GetPacoRecords() ([]models.Paco, error)
	ProximoNumeroPedido() int
}

// Catalogo resolve um serial lido contra a tabela de localizações.
type Catalogo interface {
	BuscarPorSerial(serial string) (*models.Paco, error)
}

// NovoPedidoInput é a carga de criação vinda da tela de leitura.
type NovoPedidoInput struct {
	Serial      string `json:"serial" validate:"required"`
	Solicitante string `json:"solicitante" validate:"required"`
	Observacoes string `json:"observacoes"`
	Urgente     bool   `json:"urgente"`
}

// PedidoService é o motor do ciclo de vida: criação e transição de status,
// com o arquivo local como fonte de verdade e o Google Sheets como espelho
// de melhor esforço.
type PedidoService struct {
	Pedidos  *repositories.PedidoRepository
	Catalogo Catalogo
	Sheets   RemoteSync
	Notify   *NotifyService
}

func NewPedidoService(pedidos *repositories.PedidoRepository, catalogo Catalogo, sheets RemoteSync, notify *NotifyService) *PedidoService {
	return &PedidoService{Pedidos: pedidos, Catalogo: catalogo, Sheets: sheets, Notify: notify}
}

// CriarPedido: resolve o serial, aplica a trava anti-duplicidade, aloca o
// número no arquivo local, grava local e espelha no Sheets. Falha local
// aborta; falha remota vira warning (o arquivo local é a fonte durável).
func (s *PedidoService) CriarPedido(input NovoPedidoInput) (string, error) {
	reg, err := s.Catalogo.BuscarPorSerial(input.Serial)
	if err != nil {
		return "", err
	}

	agora := time.Now()
	urgente := "Não"
	if input.Urgente {
		urgente = "Sim"
	}

	// Trava anti-duplicidade, alocação do número e gravação acontecem na
	// mesma seção crítica do repositório.
	var pedido *models.Pedido
	numero, err := s.Pedidos.CriarComAlocacao(reg.Serial, reg.Maquina, reg.Posto, reg.Coordenada, func(numero string) *models.Pedido {
		pedido = &models.Pedido{
			NumeroPedido:           numero,
			Data:                   agora,
			Serial:                 reg.Serial,
			Maquina:                reg.Maquina,
			Posto:                  reg.Posto,
			Coordenada:             reg.Coordenada,
			Modelo:                 reg.Modelo,
			OT:                     reg.OT,
			Semiacabado:            reg.Semiacabado,
			Pagoda:                 reg.Pagoda,
			Solicitante:            input.Solicitante,
			Observacoes:            input.Observacoes,
			Urgente:                urgente,
			Status:                 models.StatusPendente,
			UltimaAtualizacao:      agora.Format(repositories.LayoutData),
			ResponsavelAtualizacao: input.Solicitante,
		}
		return pedido
	})
	if err != nil {
		return "", err
	}

	itens := []models.PedidoItem{{NumeroPedido: numero, Serial: reg.Serial, Quantidade: 1}}
	if s.Sheets != nil && s.Sheets.Conectado() {
		if err := s.Sheets.SalvarPedidoCompleto(pedido, itens); err != nil {
			utils.Log.Warnw("Erro ao sincronizar pedido com o Google Sheets",
				"numero_pedido", numero, "error", err)
		}
	}

	if urgente == "Sim" && s.Notify != nil && s.Notify.Habilitado() {
		if err := s.Notify.NotificarUrgente(pedido); err != nil {
			utils.Log.Warnw("Erro ao enviar notificação de pedido urgente",
				"numero_pedido", numero, "error", err)
		}
	}

	return numero, nil
}

// AtualizarStatus valida o status, atualiza o arquivo local e espelha no
// Sheets. Pedido ausente localmente cai direto para o Sheets; ausente nos
// dois é ErrPedidoNaoEncontrado.
func (s *PedidoService) AtualizarStatus(numeroPedido, novoStatus, responsavel string) error {
	status, err := models.NormalizarStatus(novoStatus)
	if err != nil {
		return err
	}

	ultimaAtualizacao := time.Now().Format(repositories.LayoutAtualizacao)

	err = s.Pedidos.UpdateStatus(numeroPedido, status, responsavel)
	if errors.Is(err, models.ErrPedidoNaoEncontrado) {
		if s.Sheets == nil || !s.Sheets.Conectado() {
			return models.ErrPedidoNaoEncontrado
		}
		if rerr := s.Sheets.AtualizarStatusPedido(numeroPedido, status, ultimaAtualizacao, responsavel); rerr != nil {
			if errors.Is(rerr, models.ErrPedidoNaoEncontrado) {
				return models.ErrPedidoNaoEncontrado
			}
			return fmt.Errorf("erro ao atualizar status no Google Sheets: %w", rerr)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if s.Sheets != nil && s.Sheets.Conectado() {
		if rerr := s.Sheets.AtualizarStatusPedido(numeroPedido, status, ultimaAtualizacao, responsavel); rerr != nil {
			utils.Log.Warnw("Erro ao espelhar status no Google Sheets",
				"numero_pedido", numeroPedido, "error", rerr)
		}
	}
	return nil
}

// BuscarPedidos lê do Sheets quando conectado (visão compartilhada entre
// turnos), senão do arquivo local; filtros de igualdade opcionais.
func (s *PedidoService) BuscarPedidos(numeroPedido, status string) ([]models.Pedido, error) {
	if s.Sheets != nil && s.Sheets.Conectado() {
		if pedidos, err := s.buscarRemoto(numeroPedido, status); err == nil {
			return pedidos, nil
		} else {
			utils.Log.Warnw("Erro ao buscar pedidos no Google Sheets; usando arquivo local", "error", err)
		}
	}
	return s.Pedidos.Query(numeroPedido, status)
}

func (s *PedidoService) buscarRemoto(numeroPedido, status string) ([]models.Pedido, error) {
	detalhado, ok := s.Sheets.(*SheetsService)
	if !ok {
		return nil, models.ErrSheetsNaoConfigurado
	}
	records, err := detalhado.GetRecords(AbaPedidos)
	if err != nil {
		return nil, err
	}
	pedidos := []models.Pedido{}
	for _, rec := range records {
		p := pedidoFromRecord(rec)
		if p.NumeroPedido == "" {
			continue
		}
		if numeroPedido != "" && p.NumeroPedido != numeroPedido {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		pedidos = append(pedidos, p)
	}
	return pedidos, nil
}

// GetDetalhes monta a visão completa de um pedido: local primeiro, Sheets
// como alternativa quando o pedido só existe no espelho.
func (s *PedidoService) GetDetalhes(numeroPedido string) (*models.PedidoDetalhes, error) {
	p, err := s.Pedidos.Find(numeroPedido)
	if err == nil {
		return &models.PedidoDetalhes{
			Info: map[string]string{
				"Numero_Pedido":           p.NumeroPedido,
				"Data":                    p.Data.Format(repositories.LayoutData),
				"Serial":                  p.Serial,
				"Maquina":                 p.Maquina,
				"Posto":                   p.Posto,
				"Coordenada":              p.Coordenada,
				"Modelo":                  p.Modelo,
				"OT":                      p.OT,
				"Semiacabado":             p.Semiacabado,
				"Pagoda":                  p.Pagoda,
				"Solicitante":             p.Solicitante,
				"Observacoes":             p.Observacoes,
				"Urgente":                 p.Urgente,
				"Ultima_Atualizacao":      p.UltimaAtualizacao,
				"Responsavel_Atualizacao": p.ResponsavelAtualizacao,
			},
			Itens:  []models.PedidoItem{{NumeroPedido: p.NumeroPedido, Serial: p.Serial, Quantidade: 1}},
			Status: p.Status,
		}, nil
	}
	if !errors.Is(err, models.ErrPedidoNaoEncontrado) {
		return nil, err
	}
	if s.Sheets != nil && s.Sheets.Conectado() {
		return s.Sheets.GetPedidoDetalhes(numeroPedido)
	}
	return nil, models.ErrPedidoNaoEncontrado
}

// Comprovante gera o PDF do comprovante de um pedido.
func (s *PedidoService) Comprovante(numeroPedido string) ([]byte, error) {
	detalhes, err := s.GetDetalhes(numeroPedido)
	if err != nil {
		return nil, err
	}
	texto := utils.FormatarComprovante(detalhes)
	return utils.GerarComprovantePDF(texto)
}

func pedidoFromRecord(rec map[string]string) models.Pedido {
	p := models.Pedido{
		NumeroPedido:           rec["Numero_Pedido"],
		Serial:                 rec["Serial"],
		Maquina:                rec["Maquina"],
		Posto:                  rec["Posto"],
		Coordenada:             rec["Coordenada"],
		Modelo:                 rec["Modelo"],
		OT:                     rec["OT"],
		Semiacabado:            rec["Semiacabado"],
		Pagoda:                 rec["Pagoda"],
		Solicitante:            rec["Solicitante"],
		Observacoes:            rec["Observacoes"],
		Urgente:                rec["Urgente"],
		Status:                 rec["Status"],
		UltimaAtualizacao:      rec["Ultima_Atualizacao"],
		ResponsavelAtualizacao: rec["Responsavel_Atualizacao"],
		ResponsavelSeparacao:   rec["Responsavel_Separacao"],
		DataSeparacao:          rec["Data_Separacao"],
		ResponsavelColeta:      rec["Responsavel_Coleta"],
		DataColeta:             rec["Data_Coleta"],
	}
	if raw := rec["Data"]; raw != "" {
		if t, err := time.Parse(repositories.LayoutData, raw); err == nil {
			p.Data = t
		} else if t, err := time.Parse(repositories.LayoutAtualizacao, raw); err == nil {
			p.Data = t
		}
	}
	return p
}
