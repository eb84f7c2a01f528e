package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"pedidos-app/config"
	"pedidos-app/models"
	"pedidos-app/utils"
)

// NotifyService envia o aviso de pedido urgente por e-mail via SMTP.
type NotifyService struct {
	Host          string
	Port          int
	Remetente     string
	Senha         string
	Destinatarios []string
}

func NewNotifyService() *NotifyService {
	return &NotifyService{
		Host:          config.SMTPHost,
		Port:          config.SMTPPort,
		Remetente:     config.SMTPUser,
		Senha:         config.SMTPPassword,
		Destinatarios: config.EmailsUrgencia,
	}
}

// Habilitado indica se o SMTP está configurado; sem configuração o aviso é
// simplesmente pulado.
func (n *NotifyService) Habilitado() bool {
	return n.Host != "" && len(n.Destinatarios) > 0
}

func (n *NotifyService) NotificarUrgente(p *models.Pedido) error {
	subject := "🚨 Pedido Urgente " + p.NumeroPedido
	body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Novo pedido urgente de material</h3>
				<p>Pedido: <strong>%s</strong></p>
				<p>Serial: <strong>%s</strong> | Máquina: %s | Posto: %s | Coordenada: %s</p>
				<p>Solicitante: %s</p>
				<p>Este é um e-mail automático. Não responda a esta mensagem.</p>
			</body>
		</html>
	`, p.NumeroPedido, p.Serial, p.Maquina, p.Posto, p.Coordenada, p.Solicitante)

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.Remetente)
	msg.SetHeader("To", n.Destinatarios...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(n.Host, n.Port, n.Remetente, n.Senha)
	if err := dialer.DialAndSend(msg); err != nil {
		return err
	}

	utils.Log.Infow("✅ E-mail de urgência enviado", "numero_pedido", p.NumeroPedido, "destinatarios", n.Destinatarios)
	return nil
}
