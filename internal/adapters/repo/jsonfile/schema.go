package jsonfile

import "github.com/bnema/dipwatch/internal/domain"

type fileSchema struct {
	Turn     turnSchema                 `json:"turn"`
	Status   map[string]statusSchema    `json:"status"`
	Messages []messageSchema            `json:"messages"`
	Warned   warnedSchema               `json:"warned"`
	Notify   map[string]map[string]bool `json:"notify"`
}

type turnSchema struct {
	GameName      string `json:"game_name"`
	GameDate      string `json:"game_date"`
	GamePhase     string `json:"game_phase"`
	State         string `json:"state,omitempty"`
	TimeRemaining string `json:"time_remaining,omitempty"`
	UnixTime      *int64 `json:"unix_time,omitempty"`
	UnixTimeFrom  *int64 `json:"unix_time_from,omitempty"`
}

type statusSchema struct {
	Status string `json:"status"`
}

type messageSchema struct {
	Time string `json:"time,omitempty"`
	Who  string `json:"who"`
	Text string `json:"text"`
}

type warnedSchema struct {
	Warning bool `json:"warning"`
	Fatal   bool `json:"fatal"`
}

func toSchema(snapshot domain.Snapshot) fileSchema {
	status := make(map[string]statusSchema, len(snapshot.CountryStatus))
	for country, cs := range snapshot.CountryStatus {
		status[country] = statusSchema{Status: cs.Status}
	}

	messages := make([]messageSchema, 0, len(snapshot.Messages))
	for _, m := range snapshot.Messages {
		messages = append(messages, messageSchema{Time: m.Time, Who: m.Who, Text: m.Text})
	}

	return fileSchema{
		Turn: turnSchema{
			GameName:      snapshot.Turn.GameName,
			GameDate:      snapshot.Turn.GameDate,
			GamePhase:     snapshot.Turn.GamePhase,
			State:         string(snapshot.Turn.State),
			TimeRemaining: snapshot.Turn.TimeRemaining,
			UnixTime:      snapshot.Turn.UnixTime,
			UnixTimeFrom:  snapshot.Turn.UnixTimeFrom,
		},
		Status:   status,
		Messages: messages,
		Warned: warnedSchema{
			Warning: snapshot.Warned.WarningFired,
			Fatal:   snapshot.Warned.FatalFired,
		},
		Notify: snapshot.Policy,
	}
}

func fromSchema(file fileSchema) domain.Snapshot {
	status := make(map[string]domain.CountryStatus, len(file.Status))
	for country, cs := range file.Status {
		status[country] = domain.CountryStatus{Status: cs.Status}
	}

	messages := make([]domain.Message, 0, len(file.Messages))
	for _, m := range file.Messages {
		messages = append(messages, domain.Message{Time: m.Time, Who: m.Who, Text: m.Text})
	}

	policy := domain.NotifyPolicy(file.Notify)
	if policy == nil {
		policy = domain.NotifyPolicy{}
	}
	policy.EnsureDefaults()

	return domain.Snapshot{
		Turn: domain.Turn{
			GameName:      file.Turn.GameName,
			GameDate:      file.Turn.GameDate,
			GamePhase:     file.Turn.GamePhase,
			State:         domain.GameState(file.Turn.State),
			TimeRemaining: file.Turn.TimeRemaining,
			UnixTime:      file.Turn.UnixTime,
			UnixTimeFrom:  file.Turn.UnixTimeFrom,
		},
		CountryStatus: status,
		Messages:      messages,
		Warned: domain.Warned{
			WarningFired: file.Warned.Warning,
			FatalFired:   file.Warned.Fatal,
		},
		Policy: policy,
	}
}
