package vkbot

import (
	botgolang "github.com/mail-ru-im/bot-golang"

	"media-approve/internal/chat"
)

type button struct {
	Text  string
	Data  string
	Style botgolang.ButtonStyle
}

// layout lays out the rows for a control set. A pending message always shows
// the skip-gallery button; when it is off it is wired to the no-op control.
func layout(c chat.Controls) [][]button {
	var rows [][]button
	if c.Approve {
		rows = append(rows, []button{{Text: "✅ Approve", Data: chat.DataApprove, Style: botgolang.ButtonPrimary}})
		skip := button{Text: "🖼 Approve (Skip Gallery)", Data: chat.DataApproveSkipGallery, Style: botgolang.ButtonStyle("")}
		if !c.ApproveSkipGallery {
			skip.Text = "🖼 Skip Gallery (disabled)"
			skip.Data = chat.DataNoop
		}
		rows = append(rows, []button{skip})
	}
	if c.Deny {
		rows = append(rows, []button{{Text: "❌ Deny", Data: chat.DataDeny, Style: botgolang.ButtonAttention}})
	}
	if c.DenyCancel {
		rows = append(rows, []button{{Text: "Cancel", Data: chat.DataDenyCancel, Style: botgolang.ButtonStyle("")}})
	}
	return rows
}

func keyboard(c chat.Controls) botgolang.Keyboard {
	kb := botgolang.NewKeyboard()
	for _, row := range layout(c) {
		buttons := make([]botgolang.Button, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, botgolang.NewCallbackButton(b.Text, b.Data).WithStyle(b.Style))
		}
		kb.AddRow(buttons...)
	}
	return kb
}
