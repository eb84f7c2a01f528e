package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"pedidos-app/models"
	"pedidos-app/utils"

	"github.com/xuri/excelize/v2"
)

const SheetPedidos = "Pedidos"

// Layout das datas gravadas na planilha: criação e atualização de status
// usam formatos diferentes (comportamento herdado do sistema em produção).
const (
	LayoutData        = "2006-01-02 15:04:05"
	LayoutAtualizacao = "02/01/2006 15:04"
)

// Ordem fixa das colunas do arquivo pedidos.xlsx
var ColunasPedidos = []string{
	"Numero_Pedido", "Data", "Serial", "Maquina", "Posto", "Coordenada",
	"Modelo", "OT", "Semiacabado", "Pagoda", "Solicitante", "Observacoes",
	"Urgente", "Status", "Ultima_Atualizacao", "Responsavel_Atualizacao",
	"Responsavel_Separacao", "Data_Separacao", "Responsavel_Coleta", "Data_Coleta",
}

var numeroPedidoRe = regexp.MustCompile(`^REQ-(\d{3,})$`)

// PedidoRepository é o armazenamento local autoritativo: um único arquivo
// xlsx reescrito por inteiro a cada mutação. O mutex serializa escritores
// dentro do processo; o uso previsto é de um grupo único de operadores.
type PedidoRepository struct {
	Arquivo string
	Backup  *BackupRepository
	mu      sync.Mutex
}

func NewPedidoRepository(arquivo string, backup *BackupRepository) *PedidoRepository {
	return &PedidoRepository{Arquivo: arquivo, Backup: backup}
}

// ensureArquivo cria o arquivo com o cabeçalho completo na primeira escrita.
func (r *PedidoRepository) ensureArquivo() error {
	if _, err := os.Stat(r.Arquivo); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	if err := os.MkdirAll(filepath.Dir(r.Arquivo), 0755); err != nil {
		return fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), SheetPedidos)

	header := make([]interface{}, len(ColunasPedidos))
	for i, col := range ColunasPedidos {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetPedidos, "A1", &header); err != nil {
		return err
	}
	if err := f.SaveAs(r.Arquivo); err != nil {
		return fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}
	return nil
}

func (r *PedidoRepository) abrir() (*excelize.File, error) {
	f, err := excelize.OpenFile(r.Arquivo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}
	return f, nil
}

// backupAntesDeEscrever roda antes de toda mutação; falha vira warning.
func (r *PedidoRepository) backupAntesDeEscrever() {
	if r.Backup == nil {
		return
	}
	if err := r.Backup.BackupBeforeWrite(r.Arquivo); err != nil {
		utils.Log.Warnw("Não foi possível fazer backup", "error", err)
	}
}

// Append acrescenta um pedido ao final do arquivo (leitura completa +
// reescrita; sem formato de log append-only).
func (r *PedidoRepository) Append(p *models.Pedido) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(p)
}

// appendLocked grava a linha; o chamador já segura o mutex.
func (r *PedidoRepository) appendLocked(p *models.Pedido) error {
	if err := r.ensureArquivo(); err != nil {
		return err
	}

	r.backupAntesDeEscrever()

	f, err := r.abrir()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetPedidos)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	linha := []interface{}{
		p.NumeroPedido,
		p.Data.Format(LayoutData),
		p.Serial, p.Maquina, p.Posto, p.Coordenada,
		p.Modelo, p.OT, p.Semiacabado, p.Pagoda,
		p.Solicitante, p.Observacoes, p.Urgente, p.Status,
		p.UltimaAtualizacao, p.ResponsavelAtualizacao,
		p.ResponsavelSeparacao, p.DataSeparacao,
		p.ResponsavelColeta, p.DataColeta,
	}
	cell := fmt.Sprintf("A%d", len(rows)+1)
	if err := f.SetSheetRow(SheetPedidos, cell, &linha); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}
	return nil
}

// Find busca pelo número do pedido, insensível a caixa e espaços.
func (r *PedidoRepository) Find(numeroPedido string) (*models.Pedido, error) {
	pedidos, err := r.Query("", "")
	if err != nil {
		return nil, err
	}
	alvo := strings.ToUpper(strings.TrimSpace(numeroPedido))
	for i := range pedidos {
		if strings.ToUpper(strings.TrimSpace(pedidos[i].NumeroPedido)) == alvo {
			return &pedidos[i], nil
		}
	}
	return nil, models.ErrPedidoNaoEncontrado
}

// UpdateStatus atualiza o status de um pedido e os campos de auditoria. Em
// PROCESSO marca a dupla de separação, em CONCLUÍDO a dupla de coleta.
func (r *PedidoRepository) UpdateStatus(numeroPedido, novoStatus, responsavel string) error {
	status, err := models.NormalizarStatus(novoStatus)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.Arquivo); err != nil {
		return fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	f, err := r.abrir()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetPedidos)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	alvo := strings.ToUpper(strings.TrimSpace(numeroPedido))
	linha := 0
	for i := 1; i < len(rows); i++ {
		if strings.ToUpper(strings.TrimSpace(cellAt(rows[i], 0))) == alvo {
			linha = i + 1 // linhas do excelize são 1-based
			break
		}
	}
	if linha == 0 {
		return models.ErrPedidoNaoEncontrado
	}

	r.backupAntesDeEscrever()

	ultimaAtualizacao := time.Now().Format(LayoutAtualizacao)

	set := func(col int, valor string) error {
		cell, err := excelize.CoordinatesToCellName(col+1, linha)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetPedidos, cell, valor)
	}

	if err := set(colStatus, status); err != nil {
		return err
	}
	if err := set(colUltimaAtualizacao, ultimaAtualizacao); err != nil {
		return err
	}
	if err := set(colResponsavelAtualizacao, responsavel); err != nil {
		return err
	}

	switch status {
	case models.StatusProcesso:
		if err := set(colResponsavelSeparacao, responsavel); err != nil {
			return err
		}
		if err := set(colDataSeparacao, ultimaAtualizacao); err != nil {
			return err
		}
	case models.StatusConcluido:
		if err := set(colResponsavelColeta, responsavel); err != nil {
			return err
		}
		if err := set(colDataColeta, ultimaAtualizacao); err != nil {
			return err
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}
	return nil
}

// CriarComAlocacao aloca o próximo número, aplica a trava anti-duplicidade
// e grava a linha numa única seção crítica. Alocar fora do mutex permitiria
// que duas criações simultâneas recebessem o mesmo Numero_Pedido.
func (r *PedidoRepository) CriarComAlocacao(serial, maquina, posto, coordenada string, montar func(numero string) *models.Pedido) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pedidos, err := r.lerPedidos("", "")
	if err != nil {
		return "", err
	}

	numeros := make([]string, 0, len(pedidos))
	for _, p := range pedidos {
		if p.Status == models.StatusPendente &&
			p.Serial == serial && p.Maquina == maquina && p.Posto == posto && p.Coordenada == coordenada {
			return "", models.ErrPedidoDuplicado
		}
		numeros = append(numeros, p.NumeroPedido)
	}

	numero := ProximoNumero(numeros)
	if err := r.appendLocked(montar(numero)); err != nil {
		return "", err
	}
	return numero, nil
}

// Query devolve todos os pedidos, aplicando filtros de igualdade quando
// informados. A coluna Data é convertida para time.Time.
func (r *PedidoRepository) Query(numeroPedido, status string) ([]models.Pedido, error) {
	return r.lerPedidos(numeroPedido, status)
}

func (r *PedidoRepository) lerPedidos(numeroPedido, status string) ([]models.Pedido, error) {
	if _, err := os.Stat(r.Arquivo); err != nil {
		if os.IsNotExist(err) {
			return []models.Pedido{}, nil
		}
		return nil, fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	f, err := r.abrir()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetPedidos)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	pedidos := []models.Pedido{}
	for i := 1; i < len(rows); i++ {
		p := pedidoFromRow(rows[i])
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

// HasPendingDuplicate implementa a trava anti-duplicidade: já existe pedido
// PENDENTE com o mesmo serial, máquina, posto e coordenada? Comparação exata,
// sem normalização (o chamador normaliza o serial antes).
func (r *PedidoRepository) HasPendingDuplicate(serial, maquina, posto, coordenada string) (bool, error) {
	if _, err := os.Stat(r.Arquivo); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	pedidos, err := r.Query("", models.StatusPendente)
	if err != nil {
		return false, err
	}
	for _, p := range pedidos {
		if p.Serial == serial && p.Maquina == maquina && p.Posto == posto && p.Coordenada == coordenada {
			return true, nil
		}
	}
	return false, nil
}

// ProximoNumeroPedido varre a coluna Numero_Pedido por entradas REQ-NNN e
// devolve max+1 com três dígitos (acima de 999 perde só o zero à esquerda).
// Arquivo inexistente ou vazio gera REQ-001.
func (r *PedidoRepository) ProximoNumeroPedido() (string, error) {
	if _, err := os.Stat(r.Arquivo); err != nil {
		if os.IsNotExist(err) {
			return "REQ-001", nil
		}
		return "", fmt.Errorf("%w: %v", models.ErrArquivoPedidos, err)
	}

	pedidos, err := r.Query("", "")
	if err != nil {
		return "", err
	}
	numeros := make([]string, 0, len(pedidos))
	for _, p := range pedidos {
		numeros = append(numeros, p.NumeroPedido)
	}
	return ProximoNumero(numeros), nil
}

// ProximoNumero é a regra de alocação compartilhada entre o arquivo local e
// a planilha remota: considera o padrão REQ- + pelo menos três dígitos, para
// que a sequência continue depois de REQ-999.
func ProximoNumero(numeros []string) string {
	max := 0
	for _, n := range numeros {
		m := numeroPedidoRe.FindStringSubmatch(strings.TrimSpace(n))
		if m == nil {
			continue
		}
		var num int
		fmt.Sscanf(m[1], "%d", &num)
		if num > max {
			max = num
		}
	}
	return fmt.Sprintf("REQ-%03d", max+1)
}

// Índices das colunas em ColunasPedidos
const (
	colNumeroPedido = iota
	colData
	colSerial
	colMaquina
	colPosto
	colCoordenada
	colModelo
	colOT
	colSemiacabado
	colPagoda
	colSolicitante
	colObservacoes
	colUrgente
	colStatus
	colUltimaAtualizacao
	colResponsavelAtualizacao
	colResponsavelSeparacao
	colDataSeparacao
	colResponsavelColeta
	colDataColeta
)

// cellAt protege contra linhas curtas: o excelize corta células vazias no fim
func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func pedidoFromRow(row []string) models.Pedido {
	p := models.Pedido{
		NumeroPedido:           cellAt(row, colNumeroPedido),
		Serial:                 cellAt(row, colSerial),
		Maquina:                cellAt(row, colMaquina),
		Posto:                  cellAt(row, colPosto),
		Coordenada:             cellAt(row, colCoordenada),
		Modelo:                 cellAt(row, colModelo),
		OT:                     cellAt(row, colOT),
		Semiacabado:            cellAt(row, colSemiacabado),
		Pagoda:                 cellAt(row, colPagoda),
		Solicitante:            cellAt(row, colSolicitante),
		Observacoes:            cellAt(row, colObservacoes),
		Urgente:                cellAt(row, colUrgente),
		Status:                 cellAt(row, colStatus),
		UltimaAtualizacao:      cellAt(row, colUltimaAtualizacao),
		ResponsavelAtualizacao: cellAt(row, colResponsavelAtualizacao),
		ResponsavelSeparacao:   cellAt(row, colResponsavelSeparacao),
		DataSeparacao:          cellAt(row, colDataSeparacao),
		ResponsavelColeta:      cellAt(row, colResponsavelColeta),
		DataColeta:             cellAt(row, colDataColeta),
	}
	if raw := cellAt(row, colData); raw != "" {
		if t, err := time.Parse(LayoutData, raw); err == nil {
			p.Data = t
		} else if t, err := time.Parse(LayoutAtualizacao, raw); err == nil {
			p.Data = t
		}
	}
	return p
}
