package tg

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zelenin/go-tdlib/client"
)

var errAuthAborted = errors.New("tdlib: authorization aborted")

// stepAuthorizer реализует client.AuthorizationStateHandler так, чтобы
// авторизацией управляли пошагово: каждое состояние, требующее ввода,
// отдаётся наружу через states, ответ приходит через answers.
type stepAuthorizer struct {
	params  *client.SetTdlibParametersRequest
	states  chan client.AuthorizationState
	answers chan string

	abort     chan struct{}
	abortOnce sync.Once
}

func newStepAuthorizer(params *client.SetTdlibParametersRequest) *stepAuthorizer {
	return &stepAuthorizer{
		params:  params,
		states:  make(chan client.AuthorizationState, 1),
		answers: make(chan string),
		abort:   make(chan struct{}),
	}
}

func (a *stepAuthorizer) Handle(c *client.Client, state client.AuthorizationState) error {
	switch state.(type) {
	case *client.AuthorizationStateWaitTdlibParameters:
		_, err := c.SetTdlibParameters(a.params)
		return err

	case *client.AuthorizationStateWaitPhoneNumber:
		phone, err := a.ask(state)
		if err != nil {
			return err
		}
		_, err = c.SetAuthenticationPhoneNumber(&client.SetAuthenticationPhoneNumberRequest{
			PhoneNumber: phone,
			Settings:    &client.PhoneNumberAuthenticationSettings{},
		})
		return err

	case *client.AuthorizationStateWaitCode:
		code, err := a.ask(state)
		if err != nil {
			return err
		}
		_, err = c.CheckAuthenticationCode(&client.CheckAuthenticationCodeRequest{Code: code})
		return err

	case *client.AuthorizationStateWaitPassword:
		password, err := a.ask(state)
		if err != nil {
			return err
		}
		_, err = c.CheckAuthenticationPassword(&client.CheckAuthenticationPasswordRequest{Password: password})
		return err

	case *client.AuthorizationStateWaitRegistration:
		return ErrNotRegistered

	case *client.AuthorizationStateLoggingOut, *client.AuthorizationStateClosing, *client.AuthorizationStateClosed:
		return nil

	default:
		return fmt.Errorf("tdlib: unsupported authorization state %s", state.AuthorizationStateType())
	}
}

// ask публикует состояние и ждёт ответ или abort.
func (a *stepAuthorizer) ask(state client.AuthorizationState) (string, error) {
	select {
	case a.states <- state:
	case <-a.abort:
		return "", errAuthAborted
	}

	select {
	case v := <-a.answers:
		return v, nil
	case <-a.abort:
		return "", errAuthAborted
	}
}

// Close is called by client.Authorize when authorization ends.
func (a *stepAuthorizer) Close() {
	close(a.states)
}

func (a *stepAuthorizer) Abort() {
	a.abortOnce.Do(func() { close(a.abort) })
}
