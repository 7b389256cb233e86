// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/switch <n>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler Handler

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// Handler executes a command. Flow commands block on the network, so the
// TUI runs handlers off the update loop.
type Handler func(ctx *Context, args []string) (Result, error)

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeEnum                  // One of predefined values
	ArgTypeChat                  // 1-based chat number from /chats
	ArgTypeOption                // 1-based guided flow option number
	ArgTypeFile                  // File path
)

// Categories in help order.
const (
	CategoryChats = "Conversaciones"
	CategoryFlow  = "Opciones guiadas"
	CategoryOther = "General"
)

var categoryOrder = []string{CategoryChats, CategoryFlow, CategoryOther}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = CategoryOther
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Conversation commands
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/nueva", "/n"},
		Description: "Crear una conversación nueva",
		Category:    CategoryChats,
		Handler:     HandleNew,
	})

	r.Register(&Command{
		Name:        "/chats",
		Aliases:     []string{"/ls"},
		Description: "Listar conversaciones",
		Category:    CategoryChats,
		Handler:     HandleChats,
	})

	r.Register(&Command{
		Name:        "/switch",
		Aliases:     []string{"/ir"},
		Description: "Cambiar a otra conversación",
		Usage:       "/switch <n>",
		Args: []ArgDef{
			{Name: "n", Required: true, Type: ArgTypeChat, Description: "número de /chats"},
		},
		Category: CategoryChats,
		Handler:  HandleSwitch,
	})

	r.Register(&Command{
		Name:        "/delete",
		Aliases:     []string{"/borrar"},
		Description: "Eliminar una conversación (la activa por defecto)",
		Usage:       "/delete [n]",
		Args: []ArgDef{
			{Name: "n", Required: false, Type: ArgTypeChat, Description: "número de /chats"},
		},
		Category: CategoryChats,
		Handler:  HandleDelete,
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/limpiar"},
		Description: "Borrar todas las conversaciones",
		Category:    CategoryChats,
		Handler:     HandleClear,
	})

	r.Register(&Command{
		Name:        "/export",
		Aliases:     []string{"/exportar"},
		Description: "Exportar la conversación activa",
		Usage:       "/export [md|json] [archivo]",
		Args: []ArgDef{
			{Name: "format", Required: false, Type: ArgTypeEnum, Values: []string{"md", "json"}, Description: "formato"},
			{Name: "file", Required: false, Type: ArgTypeFile, Description: "ruta de salida"},
		},
		Category: CategoryChats,
		Handler:  HandleExport,
	})

	r.Register(&Command{
		Name:        "/stop",
		Aliases:     []string{"/detener"},
		Description: "Detener la respuesta en curso",
		Category:    CategoryChats,
		Handler:     HandleStop,
	})

	// Guided flow commands
	r.Register(&Command{
		Name:        "/guia",
		Aliases:     []string{"/opciones"},
		Description: "Entrar en opciones guiadas",
		Category:    CategoryFlow,
		Handler:     HandleGuide,
	})

	r.Register(&Command{
		Name:        "/opcion",
		Aliases:     []string{"/o"},
		Description: "Elegir una opción guiada",
		Usage:       "/opcion <n>",
		Args: []ArgDef{
			{Name: "n", Required: true, Type: ArgTypeOption, Description: "número de la opción"},
		},
		Category: CategoryFlow,
		Handler:  HandleOption,
	})

	r.Register(&Command{
		Name:        "/atras",
		Aliases:     []string{"/back"},
		Description: "Volver al paso anterior",
		Category:    CategoryFlow,
		Handler:     HandleBack,
	})

	r.Register(&Command{
		Name:        "/reiniciar",
		Aliases:     []string{"/restart"},
		Description: "Volver al inicio de las opciones guiadas",
		Category:    CategoryFlow,
		Handler:     HandleRestart,
	})

	r.Register(&Command{
		Name:        "/libre",
		Aliases:     []string{"/chat"},
		Description: "Salir de las opciones guiadas (chat libre)",
		Category:    CategoryFlow,
		Handler:     HandleFree,
	})

	// General
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/ayuda", "/h", "/?"},
		Description: "Mostrar la ayuda",
		Usage:       "/help [comando]",
		Args: []ArgDef{
			{Name: "command", Required: false, Type: ArgTypeString, Description: "comando"},
		},
		Category: CategoryOther,
		Handler:  HandleHelp,
	})

	r.Register(&Command{
		Name:        "/status",
		Aliases:     []string{"/estado"},
		Description: "Estado del backend y de la sesión",
		Category:    CategoryOther,
		Handler:     HandleStatus,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/salir", "/q", "/exit"},
		Description: "Salir de buho",
		Category:    CategoryOther,
		Handler:     HandleQuit,
	})
}
