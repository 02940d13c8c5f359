package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/template"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/walterschell/minishogi/minishogi"
	"github.com/walterschell/minishogi/shogianalysis"
)

const DefaultPort = 8080

// Request caps for /api/analyze and /ws.
const (
	maxRequestBytes = 1 << 20
	maxCommands     = 4096
	maxMoveLimit    = 10000
)

//go:embed assets
var assets embed.FS
var static fs.FS
var templates fs.FS

func init() {
	static, _ = fs.Sub(assets, "assets/static")
	templates, _ = fs.Sub(assets, "assets/templates")
}

func stdoutLogger(next http.Handler) http.Handler {
	return handlers.LoggingHandler(os.Stdout, next)
}

type Client struct {
	conn        *websocket.Conn
	application *Application
	writeLock   sync.Mutex
}

// send writes one JSON message. Analyses stream from a goroutine while the
// read loop may answer errors, so writes are serialised.
func (c *Client) send(v interface{}) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteJSON(v)
}

type Application struct {
	router      *mux.Router
	templates   *template.Template
	clients     map[*Client]interface{}
	clientsLock sync.RWMutex
	upgrader    websocket.Upgrader
	moveLimit   int
}

// analyzeRequest is the body of /api/analyze and of every /ws message. An
// empty setup means the default starting position.
type analyzeRequest struct {
	Setup     string   `json:"setup"`
	Commands  []string `json:"commands"`
	MoveLimit int      `json:"moveLimit"`
}

func (req *analyzeRequest) validate() error {
	if len(req.Commands) > maxCommands {
		return fmt.Errorf("too many commands: %d (max %d)", len(req.Commands), maxCommands)
	}
	if req.MoveLimit < 0 || req.MoveLimit > maxMoveLimit {
		return fmt.Errorf("moveLimit %d out of range (max %d)", req.MoveLimit, maxMoveLimit)
	}
	return nil
}

func (req *analyzeRequest) setupText() string {
	if req.Setup == "" {
		return minishogi.DefaultSetup().String()
	}
	return req.Setup
}

func (req *analyzeRequest) options(defaultLimit int) []shogianalysis.AnalyzeGameOption {
	limit := defaultLimit
	if req.MoveLimit > 0 {
		limit = req.MoveLimit
	}
	return []shogianalysis.AnalyzeGameOption{
		shogianalysis.WithMoveLimit(limit),
		shogianalysis.WithCommands(req.Commands...),
	}
}

type wsMessage struct {
	Type  string                      `json:"type"`
	Move  *shogianalysis.MoveAnalysis `json:"move,omitempty"`
	Moves int                         `json:"moves,omitempty"`
	Error string                      `json:"error,omitempty"`
}

func NewApplication(moveLimit int) *Application {
	templateParser := template.New("")
	templateParser.Delims("[[", "]]")
	result := Application{
		router:    mux.NewRouter(),
		templates: template.Must(templateParser.ParseFS(templates, "*.html.gotmpl")),
		clients:   make(map[*Client]interface{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		moveLimit: moveLimit,
	}
	result.router.NotFoundHandler = stdoutLogger(http.HandlerFunc(notFoundHandler))
	result.router.Use(stdoutLogger)

	result.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	result.router.HandleFunc("/", result.indexHandler)
	result.router.HandleFunc("/ws", result.wsHandler)
	result.router.HandleFunc("/api/default", result.defaultSetupHandler).Methods(http.MethodGet)
	result.router.HandleFunc("/api/analyze", result.analyzeHandler).Methods(http.MethodPost)
	return &result
}

func (app *Application) indexHandler(w http.ResponseWriter, r *http.Request) {
	templateVars := struct {
		Title        string
		DefaultSetup string
	}{
		Title:        "Minishogi Analyzer",
		DefaultSetup: minishogi.DefaultSetup().String(),
	}

	err := app.templates.ExecuteTemplate(w, "index.html.gotmpl", templateVars)
	if err != nil {
		fmt.Printf("Error rendering template: %v\n", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (app *Application) defaultSetupHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, minishogi.DefaultSetup().String())
}

func (app *Application) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request larger than %d bytes", tooLarge.Limit))
			return
		}
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := shogianalysis.AnalyzeGame(req.setupText(), req.options(app.moveLimit)...)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]interface{}{"moves": results})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (application *Application) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := application.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	conn.SetReadLimit(maxRequestBytes)
	client := &Client{
		conn:        conn,
		application: application,
	}
	application.clientsLock.Lock()
	application.clients[client] = nil
	count := len(application.clients)
	application.clientsLock.Unlock()
	fmt.Printf("New websocket connection from %s (%d connected)\n", conn.RemoteAddr(), count)

	go func() {
		for {
			_, messageJson, err := client.conn.ReadMessage()
			if err != nil {
				fmt.Printf("Error reading message: %v\n", err)
				application.clientsLock.Lock()
				delete(application.clients, client)
				application.clientsLock.Unlock()
				client.conn.Close()
				return
			}
			var req analyzeRequest
			if err := json.Unmarshal(messageJson, &req); err != nil {
				fmt.Printf("Error parsing message: %v\n", err)
				client.send(wsMessage{Type: "error", Error: err.Error()})
				continue
			}
			if err := req.validate(); err != nil {
				client.send(wsMessage{Type: "error", Error: err.Error()})
				continue
			}
			application.stream(client, &req)
		}
	}()
}

// stream runs one analysis and forwards every move to the client, followed
// by a "done" or "error" message.
func (app *Application) stream(client *Client, req *analyzeRequest) {
	movesChan, errChan := shogianalysis.AnalyzeGameStreaming(req.setupText(), req.options(app.moveLimit)...)
	count := 0
	for move := range movesChan {
		count++
		if err := client.send(wsMessage{Type: "move", Move: move}); err != nil {
			fmt.Printf("Error writing message: %v\n", err)
		}
	}
	if err := <-errChan; err != nil {
		client.send(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	client.send(wsMessage{Type: "done", Moves: count})
}

// Close tells every connected websocket client the server is going away and
// closes its connection. http.Server.Shutdown does not touch hijacked
// connections, so this runs alongside it.
func (app *Application) Close() {
	app.clientsLock.Lock()
	defer app.clientsLock.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for client := range app.clients {
		client.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		client.conn.Close()
		delete(app.clients, client)
	}
}

func (app *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app.router.ServeHTTP(w, r)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "File Not Found", http.StatusNotFound)
}

func main() {
	var port uint
	var moveLimit int
	flag.UintVar(&port, "port", DefaultPort, "Port to listen on")
	flag.IntVar(&moveLimit, "move-limit", minishogi.DefaultMoveLimit, "Moves per player before a tie")
	flag.Parse()
	if port == 0 || port > 65535 {
		fmt.Println("Invalid port number")
		os.Exit(1)
	}
	if moveLimit <= 0 {
		fmt.Println("Invalid move limit")
		os.Exit(1)
	}
	fmt.Printf("Starting server on :%d\n", port)
	app := NewApplication(moveLimit)
	server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: app}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		fmt.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		app.Close()
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}
	<-done
}
