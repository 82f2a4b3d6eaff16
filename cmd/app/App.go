package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"nightchat/configs"
	"nightchat/internal/cache"
	"nightchat/internal/chat"
	"nightchat/internal/enums"
	"nightchat/internal/msgs"
	"nightchat/internal/services"
	"nightchat/internal/sockets"
	"nightchat/internal/utils"

	"github.com/rs/zerolog"
)

var (
	app  *App
	once sync.Once
)

type App struct {
	ctx     context.Context
	configs *configs.Config
	logger  zerolog.Logger
}

func GetApp() *App {
	once.Do(func() {
		app = &App{}
	})
	return app
}

// LetsGo wires the conversation engine into a line-oriented terminal
// client: plain lines send a text message, /more backfills history,
// /switch re-targets the screen, /quit leaves.
func (app *App) LetsGo() {
	app.ctx = context.Background()
	app.configs = configs.GetConfig()
	app.initializeLogger()

	session, err := utils.SessionFromToken(app.configs.Token)
	if err != nil {
		app.logger.Fatal().Err(err).Msg("cannot resolve session from token")
	}

	api := services.NewMessageApiService(app.configs.ApiBaseUrl, app.configs.Token, app.configs.RequestTimeout, app.logger)

	manager := sockets.NewSocketManager(app.configs.SocketUrl, app.configs.Token, app.configs.ReconnectWait, app.logger)
	if err := manager.Connect(app.ctx); err != nil {
		// Live push unavailable; REST history and send still work.
		app.logger.Warn().Err(err).Msg("socket connect failed, continuing without live updates")
	}
	defer manager.Close()

	messageCache, err := cache.OpenMessageCache(app.configs.CachePath, app.logger)
	if err != nil {
		app.logger.Warn().Err(err).Msg("message cache unavailable")
		messageCache = nil
	} else {
		defer func() {
			_ = messageCache.Close()
		}()
	}

	screen := chat.NewConversationScreen(chat.ScreenDeps{
		Logger:         app.logger,
		API:            api,
		Channel:        sockets.NewConversationChannel(manager, app.logger),
		Cache:          messageCache,
		Session:        *session,
		ConversationID: app.configs.ConversationId,
		PageSize:       app.configs.PageSize,
		Inverted:       app.configs.InvertedList,
	})
	// Store updates arrive on the socket read pump; printing there would
	// interleave with the command loop's output. Updates only request a
	// render, the loop below is the sole goroutine that writes the screen.
	renderRequests := make(chan struct{}, 1)
	requestRender := func() {
		select {
		case renderRequests <- struct{}{}:
		default:
		}
	}
	screen.SetOnUpdate(requestRender)
	screen.Mount(app.ctx)
	defer screen.Unmount()

	fmt.Printf("=== %s ===\n", screen.Title())
	requestRender()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-renderRequests:
			app.render(screen)
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch {
			case line == "/quit":
				return
			case line == "/more":
				if err := screen.LoadOlder(app.ctx); err != nil {
					fmt.Println(msgs.MsgOperationFailed)
				}
			case strings.HasPrefix(line, "/switch "):
				screen.SwitchConversation(app.ctx, strings.TrimSpace(strings.TrimPrefix(line, "/switch ")))
				fmt.Printf("=== %s ===\n", screen.Title())
			default:
				if err := screen.Send(app.ctx, line, enums.MESSAGE_TYPE_TEXT); err != nil {
					fmt.Println(msgs.MsgSendFailed)
				}
			}
		}
	}
}

func (app *App) initializeLogger() {
	level, err := zerolog.ParseLevel(app.configs.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	app.logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func (app *App) render(screen *chat.ConversationScreen) {
	for _, message := range screen.Messages() {
		fmt.Printf("[%s] %s: %s\n", message.CreatedAt.Format("15:04"), message.SenderID, message.Content)
	}
	fmt.Println("---")
}
