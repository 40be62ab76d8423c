package wameow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/algemiroteran/canvabot/internal/funnel"
)

// Transport es la sesión real de WhatsApp sobre whatsmeow. El estado del
// dispositivo (credenciales del emparejamiento) vive en un sqlite aparte,
// manejado por el sqlstore de la librería.
type Transport struct {
	dbPath string

	mu     sync.Mutex
	client *whatsmeow.Client
}

func NewTransport(dbPath string) *Transport {
	return &Transport{dbPath: dbPath}
}

// Start levanta la sesión. Si el dispositivo todavía no está emparejado,
// cada código QR se reenvía por onQR (el panel lo renderiza) y además se
// dibuja en la terminal como respaldo. onReady dispara cuando la sesión
// queda usable.
func (t *Transport) Start(ctx context.Context, onQR func(code string), onReady func(), onMessage func(funnel.Message)) error {
	dbLog := waLog.Stdout("Database", "ERROR", true)
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", t.dbPath), dbLog)
	if err != nil {
		return fmt.Errorf("no se pudo abrir el store de sesión: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("no se pudo cargar el dispositivo: %w", err)
	}

	client := whatsmeow.NewClient(device, waLog.Stdout("Client", "ERROR", true))
	client.AddEventHandler(eventHandler(onReady, onMessage))

	if client.Store.ID == nil {
		// El canal de QR hay que pedirlo antes de conectar.
		qrChan, err := client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("no se pudo obtener el canal de QR: %w", err)
		}
		if err := client.Connect(); err != nil {
			return fmt.Errorf("no se pudo conectar: %w", err)
		}
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
					onQR(evt.Code)
				}
			}
		}()
	} else {
		if err := client.Connect(); err != nil {
			return fmt.Errorf("no se pudo conectar: %w", err)
		}
	}

	t.mu.Lock()
	t.client = client
	t.mu.Unlock()
	return nil
}

func (t *Transport) SendText(ctx context.Context, to, body string) error {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()

	if client == nil || !client.IsConnected() {
		return errors.New("sesión no conectada")
	}

	jid := types.NewJID(to, types.DefaultUserServer)
	_, err := client.SendMessage(ctx, jid, &waProto.Message{Conversation: &body})
	return err
}

func (t *Transport) Stop() {
	t.mu.Lock()
	client := t.client
	t.client = nil
	t.mu.Unlock()

	if client != nil {
		client.Disconnect()
	}
}

func eventHandler(onReady func(), onMessage func(funnel.Message)) func(any) {
	return func(evt any) {
		switch v := evt.(type) {
		case *events.Connected:
			onReady()
		case *events.Message:
			if v.Info.IsFromMe {
				return
			}
			msg, ok := convert(v)
			if !ok {
				return
			}
			onMessage(msg)
		}
	}
}

// convert baja el mensaje de whatsmeow al modelo del embudo. Solo texto e
// imagen participan; lo demás (stickers, audios, reacciones) se descarta.
func convert(v *events.Message) (funnel.Message, bool) {
	msg := funnel.Message{
		From:    v.Info.Sender.User,
		IsGroup: v.Info.IsGroup,
	}

	switch {
	case v.Message.GetImageMessage() != nil:
		msg.Type = funnel.MessageTypeImage
		msg.Body = v.Message.GetImageMessage().GetCaption()
	case v.Message.GetConversation() != "":
		msg.Type = funnel.MessageTypeText
		msg.Body = v.Message.GetConversation()
	case v.Message.GetExtendedTextMessage() != nil:
		msg.Type = funnel.MessageTypeText
		msg.Body = v.Message.GetExtendedTextMessage().GetText()
	default:
		return funnel.Message{}, false
	}

	return msg, true
}
