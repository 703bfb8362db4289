package menus

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Menuer interface {
	Menu() tgbotapi.ReplyKeyboardMarkup
}

// ApplicationMenu ties an application to the button that opens it and to the
// menu it was opened from.
type ApplicationMenu struct {
	Name   string
	From   string
	menuer Menuer
}

func NewApplicationMenu(name, from string, menuer Menuer) ApplicationMenu {
	return ApplicationMenu{
		Name:   name,
		From:   from,
		menuer: menuer,
	}
}

func (am ApplicationMenu) PrevMenu() tgbotapi.ReplyKeyboardMarkup {
	return am.menuer.Menu()
}
