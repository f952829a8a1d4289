package wa

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mdp/qrterminal"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	walog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite"
)

// IncomingMessage is the subset of a WhatsApp message the bot acts on.
type IncomingMessage struct {
	Chat     types.JID
	SenderID string
	PushName string
	Text     string
	FromMe   bool
}

type MessageHandler func(ctx context.Context, msg IncomingMessage)

type Service struct {
	client         *whatsmeow.Client
	dbPath         string
	log            walog.Logger
	messageHandler MessageHandler
}

func NewService(dbPath string, logger walog.Logger) *Service {
	return &Service{
		dbPath: dbPath,
		log:    logger,
	}
}

func (s *Service) Initialize(ctx context.Context) error {
	// whatsmeow keeps its own connection; WAL sticks to the file once enabled.
	dbAddress := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.dbPath)
	container, err := sqlstore.New(ctx, "sqlite", dbAddress, s.log)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	devices, err := container.GetAllDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	var device *store.Device
	if len(devices) > 0 {
		device = devices[0]
	} else {
		device = container.NewDevice()
	}

	s.client = whatsmeow.NewClient(device, s.log)
	s.registerEventHandlers()

	return nil
}

func (s *Service) Connect() error {
	if s.client == nil {
		return fmt.Errorf("client not initialized")
	}
	if s.client.IsConnected() {
		return nil
	}
	return s.client.Connect()
}

func (s *Service) Disconnect() {
	if s.client != nil {
		s.client.Disconnect()
	}
}

func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}

func (s *Service) registerEventHandlers() {
	s.client.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			if s.messageHandler == nil {
				return
			}
			go func() {
				ctx := context.Background()
				msg, ok := toIncoming(ctx, v, s.client.Store.LIDs.GetPNForLID)
				if !ok {
					return
				}
				s.messageHandler(ctx, msg)
			}()
		}
	})
}

// lidResolver maps a hidden-user (LID) JID to the phone-number JID it hides.
type lidResolver func(ctx context.Context, lid types.JID) (types.JID, error)

func toIncoming(ctx context.Context, evt *events.Message, resolve lidResolver) (IncomingMessage, bool) {
	text := ""
	if evt.Message.GetConversation() != "" {
		text = evt.Message.GetConversation()
	} else if ext := evt.Message.GetExtendedTextMessage(); ext != nil {
		text = ext.GetText()
	}
	if strings.TrimSpace(text) == "" {
		return IncomingMessage{}, false
	}

	return IncomingMessage{
		Chat:     evt.Info.Chat,
		SenderID: senderID(ctx, evt.Info, resolve),
		PushName: evt.Info.PushName,
		Text:     text,
		FromMe:   evt.Info.IsFromMe,
	}, true
}

// senderID keys a sender by phone number so one user keeps one state,
// whether a group addresses them by phone number or by LID.
func senderID(ctx context.Context, info types.MessageInfo, resolve lidResolver) string {
	sender := info.Sender.ToNonAD()
	if sender.Server != types.HiddenUserServer {
		return sender.User
	}

	if alt := info.SenderAlt.ToNonAD(); alt.Server == types.DefaultUserServer && alt.User != "" {
		return alt.User
	}
	if resolve != nil {
		if pn, err := resolve(ctx, sender); err == nil && !pn.IsEmpty() {
			return pn.ToNonAD().User
		}
	}

	// Unknown mapping; the LID is still stable per user.
	return sender.User
}

// Reply sends a plain text message to chat.
func (s *Service) Reply(ctx context.Context, chat types.JID, text string) error {
	resp := &waE2E.Message{
		Conversation: &text,
	}
	_, err := s.client.SendMessage(ctx, chat, resp)
	return err
}

// SetTyping toggles the composing indicator in chat. Failures are ignored.
func (s *Service) SetTyping(ctx context.Context, chat types.JID, typing bool) {
	state := types.ChatPresencePaused
	if typing {
		state = types.ChatPresenceComposing
	}
	_ = s.client.SendChatPresence(ctx, chat, state, types.ChatPresenceMediaText)
}

func (s *Service) IsLoggedIn() bool {
	return s.client.Store.ID != nil
}

func (s *Service) Pair(ctx context.Context, phone string) (string, error) {
	if s.IsLoggedIn() {
		return "", fmt.Errorf("already logged in")
	}
	if !s.client.IsConnected() {
		return "", fmt.Errorf("client not connected")
	}

	return s.client.PairPhone(ctx, phone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
}

// PrintQR connects and renders login QR codes until the channel closes.
func (s *Service) PrintQR(ctx context.Context) error {
	if s.IsLoggedIn() {
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect for QR: %w", err)
	}

	for evt := range qrChan {
		if evt.Event == "code" {
			fmt.Println("QR Code:", evt.Code)
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
		} else {
			fmt.Println("Login event:", evt.Event)
		}
	}
	return nil
}
