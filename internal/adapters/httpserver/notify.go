package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/glamourpk/glamour/internal/domain"
)

// notifyClient bounds the Telegram call so the notify goroutine cannot hang.
var notifyClient = &http.Client{Timeout: 10 * time.Second}

func orderSummary(o *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\n", o.Number)
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n", o.CustomerName, o.CustomerEmail, o.CustomerPhone)
	fmt.Fprintf(&b, "Ship to: %s, %s %s\n", o.Address, o.City, o.PostalCode)
	b.WriteString("Items:\n")
	for _, it := range o.Items {
		line := fmt.Sprintf("- %s x%d Rs. %.2f", it.Title, it.Qty, it.UnitPrice)
		if it.Size != "" {
			line += " Size: " + it.Size
		}
		if it.Color != "" {
			line += " Color: " + it.Color
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "Total: Rs. %.2f\n", o.TotalAmount)
	if o.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", o.Notes)
	}
	return b.String()
}

func sendOrderEmail(o *domain.Order) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	to := os.Getenv("ORDER_NOTIFY_EMAIL")
	if to == "" {
		to = "orders@glamourcosmetics.pk"
	}
	if host == "" || port == "" || user == "" || pass == "" {
		log.Warn().Msg("SMTP not configured, skipping email")
		return nil
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Subject: New order %s\r\n", o.Number)
	fmt.Fprintf(&buf, "From: %s\r\n", user)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.WriteString(orderSummary(o))
	auth := smtp.PlainAuth("", user, pass, host)
	if err := smtp.SendMail(host+":"+port, auth, user, []string{to}, buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("email send")
		return err
	}
	return nil
}

func sendOrderTelegram(o *domain.Order) error {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	rawIDs := os.Getenv("TELEGRAM_CHAT_IDS")
	if strings.TrimSpace(rawIDs) == "" {
		rawIDs = os.Getenv("TELEGRAM_CHAT_ID")
	}
	if token == "" || strings.TrimSpace(rawIDs) == "" {
		return fmt.Errorf("telegram vars missing")
	}
	text := orderSummary(o)
	apiURL := "https://api.telegram.org/bot" + token + "/sendMessage"
	var lastErr error
	for _, part := range strings.Split(rawIDs, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		form := url.Values{}
		form.Set("chat_id", id)
		form.Set("text", text)
		form.Set("disable_web_page_preview", "1")
		resp, err := notifyClient.PostForm(apiURL, form)
		if err != nil {
			lastErr = err
			continue
		}
		func() {
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(resp.Body)
				lastErr = fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
			}
		}()
	}
	return lastErr
}

// sendOrderNotify pushes the new order to Telegram first and falls back to
// email when that fails. Runs in its own goroutine after checkout; orders
// already marked notified are skipped.
func (s *Server) sendOrderNotify(o *domain.Order) {
	if o.Notified {
		return
	}
	sent := true
	if err := sendOrderTelegram(o); err != nil {
		log.Warn().Err(err).Msg("telegram notify failed")
		sent = false
		if os.Getenv("SMTP_HOST") != "" {
			sent = sendOrderEmail(o) == nil
		}
	}
	if !sent {
		return
	}
	if err := s.orders.MarkNotified(context.Background(), o.ID); err != nil {
		log.Warn().Err(err).Str("order", o.Number).Msg("mark notified")
	}
}
