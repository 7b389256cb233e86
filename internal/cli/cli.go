// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing for buho.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdDefault Command = iota // TUI on a terminal, REPL otherwise
	CmdTUI
	CmdChat
	CmdAsk
	CmdStatus
	CmdConfig
	CmdMock
	CmdVersion
	CmdHelp
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdMock:
		return "mock"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return ""
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config FILE replaces the default lookup chain
	Quiet      bool
	Verbose    bool // forces debug logging
	NoColor    bool

	// ask
	Query    string
	NoStream bool

	// config
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Force      bool

	// mock
	Addr     string
	FilesDir string
	// IntervalMs is the token pacing override; negative keeps the config.
	IntervalMs int

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `buho - asistente virtual BuhoFis en la terminal

Uso:
  buho                          Abre la interfaz (TUI) o el modo línea si no hay terminal
  buho tui                      Abre la interfaz a pantalla completa
  buho chat                     Conversación en modo línea con historial
  buho ask "pregunta"           Hace una sola pregunta y muestra la respuesta
  buho status, s                Estado del backend y de la sesión
  buho config [subcomando]      Configuración
  buho mock                     Inicia el backend simulado
  buho version                  Versión
  buho help                     Esta ayuda

Opciones de ask:
  --no-stream                   Usa /rag/ask en vez del flujo SSE

Subcomandos de config:
  buho config show              Muestra la configuración efectiva
  buho config path              Ruta del archivo de configuración
  buho config init [--force]    Escribe un config.toml con valores por defecto
  buho config keys              Lista las claves disponibles
  buho config get CLAVE         Lee un valor (p. ej. backend.base_url)
  buho config set CLAVE VALOR   Cambia un valor y guarda

Opciones de mock:
  --addr HOST:PUERTO            Dirección de escucha (por defecto mock.addr)
  --files DIR                   Carpeta servida en /files/download
  --interval MS                 Pausa entre tokens del flujo SSE

Opciones globales:
  --config ARCHIVO              Usa este archivo de configuración
  -q, --quiet                   Salida mínima
  -v, --verbose                 Registro en nivel debug
  --no-color                    Desactiva los colores

Dentro del chat:
  /ayuda                        Lista de comandos (/guia, /opcion N, /atras, /libre...)
  Ctrl+C                        Detiene la respuesta en curso
  Ctrl+D                        Sale

Variables de entorno:
  BUHO_API_BASE_URL             URL del backend
  BUHO_STORAGE                  memory | file | redis
  BUHO_LOG_LEVEL                debug | info | warn | error

Versión: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	FprintUsage(os.Stdout)
}

// FprintUsage writes the usage text to w.
func FprintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	FprintVersion(os.Stdout)
}

// FprintVersion writes version information to w.
func FprintVersion(w io.Writer) {
	fmt.Fprintf(w, "buho version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// If no remaining args, pick TUI or REPL at run time
	if len(remaining) == 0 {
		return CmdDefault, parsedArgs
	}

	first := remaining[0]
	cmd := strings.ToLower(first)
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "chat", "repl":
		return CmdChat, parsedArgs

	case "ask", "a":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config", "cfg":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "mock", "mockserver":
		parseMockArgs(&parsedArgs, remaining)
		return CmdMock, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help", "ayuda":
		return CmdHelp, parsedArgs

	default:
		// Anything else is a question: buho ¿cuándo es la matrícula?
		parsedArgs.Raw = append([]string{first}, remaining...)
		parseAskArgs(&parsedArgs, parsedArgs.Raw)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags are recognized anywhere on the line.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--no-color":
			parsedArgs.NoColor = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments. Everything that is
// not a flag is part of the question.
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "no-stream")
	args.NoStream = p.BoolFlag("no-stream")
	args.Query = strings.TrimSpace(JoinPositionalArgs(p, 0))
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "force")
	args.Subcommand = strings.ToLower(p.Subcommand())
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = JoinPositionalArgs(p, 2)
	args.Force = p.BoolFlag("force")
}

// parseMockArgs parses mock command specific arguments.
func parseMockArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Addr = p.Flag("addr")
	args.FilesDir = p.Flag("files")
	args.IntervalMs = p.FlagIntOrDefault("interval", -1)
}
