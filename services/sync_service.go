package services

import (
	"context"
	"fmt"
	"time"

	"pedidos-app/models"
	"pedidos-app/repositories"
	"pedidos-app/utils"
)

// SyncService drena a fila de leituras feitas sem conexão, criando os
// pedidos correspondentes no Google Sheets. Leituras cujo serial não existe
// no catálogo remoto ficam na fila até o catálogo conhecê-las.
type SyncService struct {
	Leituras  *repositories.LeituraRepository
	Sheets    RemoteSync
	Intervalo time.Duration
}

func NewSyncService(leituras *repositories.LeituraRepository, sheets RemoteSync) *SyncService {
	return &SyncService{Leituras: leituras, Sheets: sheets, Intervalo: 5 * time.Second}
}

// Start roda o laço de sincronização até o contexto ser cancelado. Qualquer
// falha em um ciclo é registrada e o laço continua.
func (s *SyncService) Start(ctx context.Context) {
	utils.Log.Infow("🚀 Sincronizador de leituras iniciado", "intervalo", s.Intervalo)
	ticker := time.NewTicker(s.Intervalo)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			utils.Log.Info("Sincronizador de leituras encerrado")
			return
		case <-ticker.C:
			s.passo()
		}
	}
}

func (s *SyncService) passo() {
	defer func() {
		if r := recover(); r != nil {
			utils.Log.Errorw("Pânico no ciclo de sincronização", "panic", r)
		}
	}()
	if _, err := s.Sincronizar(); err != nil {
		utils.Log.Warnw("Erro no ciclo de sincronização", "error", err)
	}
}

// Sincronizar executa uma passada sobre a fila e devolve quantas leituras
// viraram pedido. Também atende o disparo manual pela API.
func (s *SyncService) Sincronizar() (int, error) {
	pendentes, err := s.Leituras.Pendentes()
	if err != nil {
		return 0, err
	}
	if len(pendentes) == 0 {
		return 0, nil
	}
	if s.Sheets == nil || !s.Sheets.Conectado() {
		return 0, models.ErrSheetsNaoConfigurado
	}

	paco, err := s.Sheets.GetPacoRecords()
	if err != nil {
		return 0, err
	}

	enviadas := 0
	for _, leitura := range pendentes {
		reg, err := repositories.BuscarSerial(paco, leitura.Codigo)
		if err != nil {
			// serial ainda desconhecido no catálogo: permanece na fila
			if terr := s.Leituras.MarcarTentativa(leitura.ID); terr != nil {
				utils.Log.Warnw("Erro ao registrar tentativa de leitura", "id", leitura.ID, "error", terr)
			}
			continue
		}

		numero := fmt.Sprintf("REQ-%03d", s.Sheets.ProximoNumeroPedido())
		pedido := &models.Pedido{
			NumeroPedido:           numero,
			Data:                   leitura.LidaEm,
			Serial:                 reg.Serial,
			Maquina:                reg.Maquina,
			Posto:                  reg.Posto,
			Coordenada:             reg.Coordenada,
			Modelo:                 reg.Modelo,
			OT:                     reg.OT,
			Semiacabado:            reg.Semiacabado,
			Pagoda:                 reg.Pagoda,
			Solicitante:            "Pedido Local",
			Urgente:                "Não",
			Status:                 models.StatusPendente,
			UltimaAtualizacao:      leitura.LidaEm.Format(repositories.LayoutData),
			ResponsavelAtualizacao: "Pedido Local",
		}
		itens := []models.PedidoItem{{NumeroPedido: numero, Serial: reg.Serial, Quantidade: 1}}

		if err := s.Sheets.SalvarPedidoCompleto(pedido, itens); err != nil {
			utils.Log.Warnw("Erro ao enviar leitura para o Google Sheets",
				"id", leitura.ID, "codigo", leitura.Codigo, "error", err)
			if terr := s.Leituras.MarcarTentativa(leitura.ID); terr != nil {
				utils.Log.Warnw("Erro ao registrar tentativa de leitura", "id", leitura.ID, "error", terr)
			}
			continue
		}

		if err := s.Leituras.Remover(leitura.ID); err != nil {
			utils.Log.Warnw("Erro ao remover leitura sincronizada da fila", "id", leitura.ID, "error", err)
		}
		utils.Log.Infow("✅ Leitura sincronizada", "codigo", leitura.Codigo, "numero_pedido", numero)
		enviadas++
	}
	return enviadas, nil
}
