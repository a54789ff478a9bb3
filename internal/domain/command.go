package domain

import "strings"

// CommandPrefix marks a chat message as an in-band watcher command.
const CommandPrefix = "WDA: "

type CommandKind string

const (
	CommandNone            CommandKind = "none"
	CommandAdminStopAll    CommandKind = "admin_stop_all"
	CommandAdminReset      CommandKind = "admin_reset"
	CommandSetSubscription CommandKind = "set_subscription"
)

// Command is the parsed form of an in-band chat command. Unrecognized or
// malformed text parses to CommandNone rather than an error: commands are
// best-effort and must never fail a cycle.
type Command struct {
	Kind          CommandKind
	Enable        bool
	Categories    []string
	AllCategories bool
	Who           string
}

func (c Command) IsCommand() bool {
	return c.Kind != CommandNone
}

// ParseCommand recognizes the restricted grammar embedded in chat text:
//
//	WDA: admin notify stop
//	WDA: admin notify reset
//	WDA: start notify [cat1,cat2]
//	WDA: stop notify all
//
// The remainder after the prefix must split on single spaces into exactly
// three tokens [target, action, arg]; any other shape is not a command.
func ParseCommand(msg Message) Command {
	none := Command{Kind: CommandNone}

	rest, ok := strings.CutPrefix(msg.Text, CommandPrefix)
	if !ok {
		return none
	}

	tokens := strings.Split(rest, " ")
	if len(tokens) != 3 {
		return none
	}
	target, action, arg := tokens[0], tokens[1], tokens[2]
	if action != "notify" {
		return none
	}

	switch target {
	case "admin":
		switch arg {
		case "stop":
			return Command{Kind: CommandAdminStopAll}
		case "reset":
			return Command{Kind: CommandAdminReset}
		}
		return none
	case "start", "stop":
		cmd := Command{
			Kind:   CommandSetSubscription,
			Enable: target == "start",
			Who:    msg.Who,
		}
		if arg == "all" {
			cmd.AllCategories = true
			return cmd
		}
		if !strings.HasPrefix(arg, "[") || !strings.HasSuffix(arg, "]") {
			return none
		}
		for _, category := range strings.Split(strings.Trim(arg, "[]"), ",") {
			if category = strings.TrimSpace(category); category != "" {
				cmd.Categories = append(cmd.Categories, category)
			}
		}
		return cmd
	}

	return none
}

// Apply mutates the policy according to the command. CommandNone is a
// no-op.
func (c Command) Apply(policy NotifyPolicy) {
	switch c.Kind {
	case CommandAdminStopAll:
		policy.StopAll(true)
	case CommandAdminReset:
		policy.StopAll(false)
	case CommandSetSubscription:
		policy.SetSubscriber(c.Categories, c.AllCategories, c.Who, c.Enable)
	}
}
