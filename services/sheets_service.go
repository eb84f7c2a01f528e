package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"pedidos-app/config"
	"pedidos-app/models"
	"pedidos-app/repositories"
	"pedidos-app/utils"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	AbaPedidos = "Pedidos"
	AbaItens   = "Itens"
)

// Ordem canônica do cabeçalho da aba Pedidos no Google Sheets (difere da
// ordem do arquivo local; contrato herdado da planilha compartilhada)
var ColunasPedidosSheets = []string{
	"Numero_Pedido", "Data", "Serial", "Maquina", "Posto", "Coordenada",
	"Modelo", "OT", "Semiacabado", "Pagoda", "Status", "Urgente",
	"Ultima_Atualizacao", "Responsavel_Atualizacao",
	"Responsavel_Separacao", "Data_Separacao",
	"Responsavel_Coleta", "Data_Coleta", "Solicitante", "Observacoes",
}

var ColunasItensSheets = []string{"Numero_Pedido", "Serial", "Quantidade"}

var spreadsheetIDRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9\-_]+)`)

// SheetsService é o cliente de sincronização com a planilha compartilhada.
// svc fica nil enquanto credenciais + URL + abertura de teste não passarem;
// nesse estado toda operação remota devolve ErrSheetsNaoConfigurado sem
// efeitos colaterais e o fluxo local segue normal.
type SheetsService struct {
	ConfigFile string
	Config     *config.SheetsConfig
	PacoTab    string

	mu            sync.Mutex
	svc           *sheets.Service
	spreadsheetID string
	sheetIDs      map[string]int64

	cacheMu sync.Mutex
	cache   map[string][]map[string]string
}

func NewSheetsService(configFile string) *SheetsService {
	s := &SheetsService{
		ConfigFile: configFile,
		PacoTab:    "paco",
		cache:      map[string][]map[string]string{},
	}
	cfg, err := config.LoadSheetsConfig(configFile)
	if err != nil {
		utils.Log.Warnw("Erro ao carregar config.json", "error", err)
	}
	s.Config = cfg
	s.InitializeClient()
	return s
}

// InitializeClient (re)monta o cliente a partir do config atual. Qualquer
// falha degrada para o estado não configurado, nunca derruba o processo.
func (s *SheetsService) InitializeClient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.svc = nil
	s.spreadsheetID = ""
	s.sheetIDs = map[string]int64{}

	if s.Config == nil || len(s.Config.SheetsCredentials) == 0 || s.Config.SheetsURL == "" {
		utils.Log.Info("Google Sheets não configurado; operando somente local")
		return
	}

	m := spreadsheetIDRe.FindStringSubmatch(s.Config.SheetsURL)
	if m == nil {
		utils.Log.Warnw("URL da planilha inválida", "url", s.Config.SheetsURL)
		return
	}
	id := m[1]

	ctx := context.Background()
	conf, err := google.JWTConfigFromJSON(s.Config.SheetsCredentials, sheets.SpreadsheetsScope)
	if err != nil {
		utils.Log.Warnw("Credenciais do Google Sheets inválidas", "error", err)
		return
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		utils.Log.Warnw("Erro ao inicializar cliente do Google Sheets", "error", err)
		return
	}

	// Abertura de teste; também carrega os sheetIds por título
	doc, err := svc.Spreadsheets.Get(id).Do()
	if err != nil {
		utils.Log.Warnw("Erro ao acessar planilha", "error", err)
		return
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	s.svc = svc
	s.spreadsheetID = id
	utils.Log.Infow("Conectado ao Google Sheets", "spreadsheet", id)
}

func (s *SheetsService) Conectado() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc != nil
}

func (s *SheetsService) client() (*sheets.Service, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.svc == nil {
		return nil, "", models.ErrSheetsNaoConfigurado
	}
	return s.svc, s.spreadsheetID, nil
}

// SalvarURL grava a URL no config.json e reinicializa o cliente.
func (s *SheetsService) SalvarURL(url string) error {
	s.Config.SheetsURL = url
	if err := config.SaveSheetsConfig(s.ConfigFile, s.Config); err != nil {
		return err
	}
	s.InitializeClient()
	return nil
}

// ImportarConfig substitui o config.json por um arquivo enviado (deve conter
// sheets_credentials) e reinicializa o cliente.
func (s *SheetsService) ImportarConfig(data []byte) error {
	cfg := &config.SheetsConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config.json inválido: %w", err)
	}
	if len(cfg.SheetsCredentials) == 0 {
		return errors.New("o arquivo não contém as credenciais da API (sheets_credentials)")
	}
	if cfg.SheetsURL == "" {
		cfg.SheetsURL = s.Config.SheetsURL
	}
	s.Config = cfg
	if err := config.SaveSheetsConfig(s.ConfigFile, cfg); err != nil {
		return err
	}
	s.InitializeClient()
	return nil
}

func (s *SheetsService) TestarConexao() error {
	svc, id, err := s.client()
	if err != nil {
		return err
	}
	_, err = svc.Spreadsheets.Get(id).Do()
	return err
}

// SalvarPedidoCompleto acrescenta um pedido e seus itens, garantindo o
// cabeçalho canônico da aba Pedidos e nunca limpando dados existentes.
func (s *SheetsService) SalvarPedidoCompleto(p *models.Pedido, itens []models.PedidoItem) error {
	svc, id, err := s.client()
	if err != nil {
		return err
	}

	if _, err := s.garantirAba(AbaPedidos); err != nil {
		return fmt.Errorf("erro ao abrir aba %s: %w", AbaPedidos, err)
	}
	if _, err := s.garantirAba(AbaItens); err != nil {
		return fmt.Errorf("erro ao abrir aba %s: %w", AbaItens, err)
	}

	if err := s.garantirCabecalho(AbaPedidos, ColunasPedidosSheets); err != nil {
		return err
	}
	if err := s.garantirCabecalho(AbaItens, ColunasItensSheets); err != nil {
		return err
	}

	linha := []interface{}{
		p.NumeroPedido,
		p.Data.Format(repositories.LayoutData),
		p.Serial, p.Maquina, p.Posto, p.Coordenada,
		p.Modelo, p.OT, p.Semiacabado, p.Pagoda,
		p.Status, p.Urgente,
		p.UltimaAtualizacao, p.ResponsavelAtualizacao,
		p.ResponsavelSeparacao, p.DataSeparacao,
		p.ResponsavelColeta, p.DataColeta,
		p.Solicitante, p.Observacoes,
	}
	if err := s.appendRows(svc, id, AbaPedidos, [][]interface{}{linha}); err != nil {
		return fmt.Errorf("erro ao salvar pedido no Google Sheets: %w", err)
	}

	linhasItens := make([][]interface{}, 0, len(itens))
	for _, item := range itens {
		linhasItens = append(linhasItens, []interface{}{item.NumeroPedido, item.Serial, item.Quantidade})
	}
	if len(linhasItens) > 0 {
		if err := s.appendRows(svc, id, AbaItens, linhasItens); err != nil {
			return fmt.Errorf("erro ao salvar itens no Google Sheets: %w", err)
		}
	}

	// Formatação do cabeçalho é cosmética; falha vira warning
	if err := s.formatarCabecalhos(AbaPedidos, AbaItens); err != nil {
		utils.Log.Warnw("Não foi possível aplicar a formatação", "error", err)
	}

	s.invalidar(AbaPedidos)
	s.invalidar(AbaItens)
	return nil
}

// GetRecords lê uma aba inteira como registros (cabeçalho → chave). A
// leitura fica em cache por aba; erro de quota devolve o cache ou vazio,
// nunca propaga.
func (s *SheetsService) GetRecords(aba string) ([]map[string]string, error) {
	s.cacheMu.Lock()
	if cached, ok := s.cache[aba]; ok {
		s.cacheMu.Unlock()
		return cached, nil
	}
	s.cacheMu.Unlock()

	svc, id, err := s.client()
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(id, aba).Do()
	if err != nil {
		if isQuotaErr(err) {
			// Sem cache para servir neste ponto; degrada para vazio
			utils.Log.Warnw("Quota do Google Sheets excedida", "aba", aba)
			return []map[string]string{}, nil
		}
		return nil, err
	}

	records := valuesToRecords(resp.Values)
	s.cacheMu.Lock()
	s.cache[aba] = records
	s.cacheMu.Unlock()
	return records, nil
}

// GetPacoRecords lê o espelho do catálogo com os nomes de coluna
// normalizados (trim + título), como o leitor local faz.
func (s *SheetsService) GetPacoRecords() ([]models.Paco, error) {
	records, err := s.GetRecords(s.PacoTab)
	if err != nil {
		return nil, err
	}
	registros := make([]models.Paco, 0, len(records))
	for _, rec := range records {
		norm := map[string]string{}
		for k, v := range rec {
			norm[repositories.TituloColuna(k)] = strings.TrimSpace(v)
		}
		r := models.Paco{
			Serial:      norm["Serial"],
			Maquina:     norm["Maquina"],
			Posto:       norm["Posto"],
			Coordenada:  norm["Coordenada"],
			Modelo:      norm["Modelo"],
			OT:          norm["Ot"],
			Semiacabado: norm["Semiacabado"],
			Pagoda:      norm["Pagoda"],
		}
		if r.Serial == "" && r.Maquina == "" {
			continue
		}
		registros = append(registros, r)
	}
	return registros, nil
}

// GetPedidoDetalhes combina a linha da aba Pedidos com os itens da aba Itens.
func (s *SheetsService) GetPedidoDetalhes(numeroPedido string) (*models.PedidoDetalhes, error) {
	pedidos, err := s.GetRecords(AbaPedidos)
	if err != nil {
		return nil, err
	}

	var info map[string]string
	for _, rec := range pedidos {
		if rec["Numero_Pedido"] == numeroPedido {
			info = rec
			break
		}
	}
	if info == nil {
		return nil, models.ErrPedidoNaoEncontrado
	}

	itensRecords, err := s.GetRecords(AbaItens)
	if err != nil {
		return nil, err
	}
	itens := []models.PedidoItem{}
	for _, rec := range itensRecords {
		if rec["Numero_Pedido"] == numeroPedido {
			qtd := 1
			fmt.Sscanf(rec["Quantidade"], "%d", &qtd)
			itens = append(itens, models.PedidoItem{
				NumeroPedido: rec["Numero_Pedido"],
				Serial:       rec["Serial"],
				Quantidade:   qtd,
			})
		}
	}

	return &models.PedidoDetalhes{
		Info:   info,
		Itens:  itens,
		Status: info["Status"],
	}, nil
}

// AtualizarStatusPedido localiza a linha pela coluna Numero_Pedido
// (comparação com trim + maiúsculas), resolve os índices das colunas pelo
// cabeçalho e atualiza célula a célula.
func (s *SheetsService) AtualizarStatusPedido(numeroPedido, novoStatus, ultimaAtualizacao, responsavel string) error {
	svc, id, err := s.client()
	if err != nil {
		return err
	}

	colResp, err := svc.Spreadsheets.Values.Get(id, AbaPedidos+"!A:A").Do()
	if err != nil {
		return fmt.Errorf("erro ao ler a coluna Numero_Pedido: %w", err)
	}
	alvo := strings.ToUpper(strings.TrimSpace(numeroPedido))
	linha := 0
	for i := 1; i < len(colResp.Values); i++ {
		if len(colResp.Values[i]) == 0 {
			continue
		}
		v := strings.ToUpper(strings.TrimSpace(fmt.Sprint(colResp.Values[i][0])))
		if v == alvo {
			linha = i + 1 // 1-based
			break
		}
	}
	if linha == 0 {
		return fmt.Errorf("pedido %q não encontrado na aba %s: %w", numeroPedido, AbaPedidos, models.ErrPedidoNaoEncontrado)
	}

	headResp, err := svc.Spreadsheets.Values.Get(id, AbaPedidos+"!1:1").Do()
	if err != nil || len(headResp.Values) == 0 {
		return fmt.Errorf("erro ao ler o cabeçalho da aba %s", AbaPedidos)
	}
	colunas := map[string]int{}
	for i, h := range headResp.Values[0] {
		colunas[strings.TrimSpace(fmt.Sprint(h))] = i + 1
	}
	obrigatorias := []string{
		"Status", "Ultima_Atualizacao", "Responsavel_Atualizacao",
		"Responsavel_Separacao", "Data_Separacao",
		"Responsavel_Coleta", "Data_Coleta",
	}
	for _, c := range obrigatorias {
		if colunas[c] == 0 {
			return fmt.Errorf("coluna %q não encontrada na aba %s", c, AbaPedidos)
		}
	}

	set := func(coluna string, valor string) error {
		rng := fmt.Sprintf("%s!%s%d", AbaPedidos, colLetter(colunas[coluna]), linha)
		vr := &sheets.ValueRange{Values: [][]interface{}{{valor}}}
		_, err := svc.Spreadsheets.Values.Update(id, rng, vr).ValueInputOption("USER_ENTERED").Do()
		return err
	}

	if err := set("Status", novoStatus); err != nil {
		return err
	}
	if err := set("Ultima_Atualizacao", ultimaAtualizacao); err != nil {
		return err
	}
	if err := set("Responsavel_Atualizacao", responsavel); err != nil {
		return err
	}

	switch novoStatus {
	case models.StatusProcesso:
		if err := set("Responsavel_Separacao", responsavel); err != nil {
			return err
		}
		if err := set("Data_Separacao", ultimaAtualizacao); err != nil {
			return err
		}
	case models.StatusConcluido:
		if err := set("Responsavel_Coleta", responsavel); err != nil {
			return err
		}
		if err := set("Data_Coleta", ultimaAtualizacao); err != nil {
			return err
		}
	}

	s.invalidar(AbaPedidos)
	return nil
}

// ProximoNumeroPedido devolve o próximo sequencial contando só entradas no
// formato REQ-NNN da aba Pedidos. Sem conexão → 1; nunca retorna erro.
func (s *SheetsService) ProximoNumeroPedido() int {
	svc, id, err := s.client()
	if err != nil {
		return 1
	}
	resp, err := svc.Spreadsheets.Values.Get(id, AbaPedidos+"!A:A").Do()
	if err != nil {
		utils.Log.Warnw("Não foi possível buscar o próximo número de pedido", "error", err)
		return 1
	}
	numeros := []string{}
	for i := 1; i < len(resp.Values); i++ {
		if len(resp.Values[i]) > 0 {
			numeros = append(numeros, fmt.Sprint(resp.Values[i][0]))
		}
	}
	prox := repositories.ProximoNumero(numeros)
	n := 0
	fmt.Sscanf(strings.TrimPrefix(prox, "REQ-"), "%d", &n)
	return n
}

// ImportarPaco sobrescreve a aba do catálogo com o conteúdo enviado
// (operação administrativa; única escrita destrutiva do cliente).
func (s *SheetsService) ImportarPaco(rows [][]interface{}) error {
	svc, id, err := s.client()
	if err != nil {
		return err
	}
	if _, err := s.garantirAba(s.PacoTab); err != nil {
		return err
	}
	if _, err := svc.Spreadsheets.Values.Clear(id, s.PacoTab, &sheets.ClearValuesRequest{}).Do(); err != nil {
		return fmt.Errorf("erro ao limpar a aba %s: %w", s.PacoTab, err)
	}
	vr := &sheets.ValueRange{Values: rows}
	if _, err := svc.Spreadsheets.Values.Update(id, s.PacoTab+"!A1", vr).ValueInputOption("USER_ENTERED").Do(); err != nil {
		return fmt.Errorf("erro ao escrever a aba %s: %w", s.PacoTab, err)
	}
	if err := s.formatarCabecalhos(s.PacoTab); err != nil {
		utils.Log.Warnw("Não foi possível aplicar a formatação", "error", err)
	}
	s.invalidar(s.PacoTab)
	return nil
}

// SincronizarPaco publica a aba Paco da planilha local de localizações na
// aba do catálogo remoto, pelo mesmo caminho de escrita do ImportarPaco.
func (s *SheetsService) SincronizarPaco(arquivo string) error {
	rows, err := repositories.LerLinhasPaco(arquivo)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("planilha de localizações vazia na aba %s", repositories.SheetPaco)
	}
	return s.ImportarPaco(rows)
}

// InvalidarCache descarta as leituras em cache (recarga manual).
func (s *SheetsService) InvalidarCache() {
	s.cacheMu.Lock()
	s.cache = map[string][]map[string]string{}
	s.cacheMu.Unlock()
}

func (s *SheetsService) invalidar(aba string) {
	s.cacheMu.Lock()
	delete(s.cache, aba)
	s.cacheMu.Unlock()
}

// garantirAba devolve o sheetId da aba, criando-a se não existir.
func (s *SheetsService) garantirAba(titulo string) (int64, error) {
	s.mu.Lock()
	svc, id := s.svc, s.spreadsheetID
	if svc == nil {
		s.mu.Unlock()
		return 0, models.ErrSheetsNaoConfigurado
	}
	if sheetID, ok := s.sheetIDs[titulo]; ok {
		s.mu.Unlock()
		return sheetID, nil
	}
	s.mu.Unlock()

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: titulo},
			},
		}},
	}
	resp, err := svc.Spreadsheets.BatchUpdate(id, req).Do()
	if err != nil {
		// Outra instância pode ter criado a aba no meio tempo
		doc, gerr := svc.Spreadsheets.Get(id).Do()
		if gerr != nil {
			return 0, err
		}
		for _, sh := range doc.Sheets {
			if sh.Properties != nil && sh.Properties.Title == titulo {
				s.mu.Lock()
				s.sheetIDs[titulo] = sh.Properties.SheetId
				s.mu.Unlock()
				return sh.Properties.SheetId, nil
			}
		}
		return 0, err
	}

	var sheetID int64
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			sheetID = r.AddSheet.Properties.SheetId
		}
	}
	s.mu.Lock()
	s.sheetIDs[titulo] = sheetID
	s.mu.Unlock()
	return sheetID, nil
}

// garantirCabecalho reescreve a primeira linha se divergir do padrão.
func (s *SheetsService) garantirCabecalho(aba string, colunas []string) error {
	svc, id, err := s.client()
	if err != nil {
		return err
	}
	resp, err := svc.Spreadsheets.Values.Get(id, aba+"!1:1").Do()
	if err != nil {
		return err
	}
	atual := []string{}
	if len(resp.Values) > 0 {
		for _, v := range resp.Values[0] {
			atual = append(atual, fmt.Sprint(v))
		}
	}
	igual := len(atual) == len(colunas)
	if igual {
		for i := range colunas {
			if atual[i] != colunas[i] {
				igual = false
				break
			}
		}
	}
	if igual {
		return nil
	}

	header := make([]interface{}, len(colunas))
	for i, c := range colunas {
		header[i] = c
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{header}}
	_, err = svc.Spreadsheets.Values.Update(id, aba+"!A1", vr).ValueInputOption("USER_ENTERED").Do()
	return err
}

func (s *SheetsService) appendRows(svc *sheets.Service, id, aba string, rows [][]interface{}) error {
	vr := &sheets.ValueRange{Values: rows}
	_, err := svc.Spreadsheets.Values.Append(id, aba+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Do()
	return err
}

// formatarCabecalhos aplica negrito, centralizado, fundo cinza e congela a
// primeira linha das abas indicadas.
func (s *SheetsService) formatarCabecalhos(abas ...string) error {
	svc, id, err := s.client()
	if err != nil {
		return err
	}

	reqs := []*sheets.Request{}
	for _, aba := range abas {
		sheetID, err := s.garantirAba(aba)
		if err != nil {
			return err
		}
		reqs = append(reqs,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:       sheetID,
						StartRowIndex: 0,
						EndRowIndex:   1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							BackgroundColor:     &sheets.Color{Red: 0.8, Green: 0.8, Blue: 0.8},
							HorizontalAlignment: "CENTER",
							TextFormat:          &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat(backgroundColor,horizontalAlignment,textFormat)",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId: sheetID,
						GridProperties: &sheets.GridProperties{
							FrozenRowCount: 1,
						},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		)
	}

	_, err = svc.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).Do()
	return err
}

func valuesToRecords(values [][]interface{}) []map[string]string {
	records := []map[string]string{}
	if len(values) == 0 {
		return records
	}
	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = fmt.Sprint(h)
	}
	for _, row := range values[1:] {
		rec := map[string]string{}
		for i, h := range headers {
			if i < len(row) {
				rec[h] = fmt.Sprint(row[i])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func isQuotaErr(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Quota exceeded") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "[429]")
}

// colLetter converte índice 1-based em letra de coluna A1 (1→A, 27→AA).
func colLetter(n int) string {
	letters := ""
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}
