package dialog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/furnistudio/lead-inbox/internal/models"
)

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, _ int64, text string) error {
	n.sent = append(n.sent, text)
	return n.err
}

func newTestMachine() (*Machine, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewMachine(notifier, zap.NewNop()), notifier
}

func newTestConversation(state models.DialogState) *models.Conversation {
	conv := models.NewConversation(42, models.Sender{ID: 7, FirstName: "Ivan"}, 1700000000000)
	conv.State = state
	return conv
}

func TestAdvanceGreetingStartsQualification(t *testing.T) {
	machine, notifier := newTestMachine()
	conv := newTestConversation(models.StateGreeting)

	state := machine.Advance(context.Background(), conv, "хочу кухню")

	assert.Equal(t, models.StateQualify, state)
	assert.Equal(t, models.StateQualify, conv.State)
	assert.Equal(t, 0, conv.CurrentQuestion)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, Questions[0], notifier.sent[0])
	assert.Empty(t, conv.Answers, "greeting transition must not record an answer")
}

func TestAdvanceQualifyRecordsOneAnswerPerMessage(t *testing.T) {
	machine, notifier := newTestMachine()
	conv := newTestConversation(models.StateQualify)
	conv.CurrentQuestion = 0

	answers := []string{"кухня", "модерн", "300 тысяч", "да", "Москва"}
	for i, answer := range answers {
		state := machine.Advance(context.Background(), conv, answer)
		assert.Equal(t, answer, conv.Answers[fmt.Sprintf("question_%d", i)])
		if i < len(answers)-1 {
			assert.Equal(t, models.StateQualify, state)
			assert.Equal(t, i+1, conv.CurrentQuestion)
		} else {
			assert.Equal(t, models.StateContact, state)
		}
	}

	assert.Len(t, conv.Answers, len(Questions))
	require.Len(t, notifier.sent, len(Questions))
	assert.Equal(t, Questions[1:], notifier.sent[:len(Questions)-1])
	assert.Equal(t, ContactMessage, notifier.sent[len(Questions)-1])
}

func TestAdvanceContactPhoneOnlyStaysInContact(t *testing.T) {
	machine, notifier := newTestMachine()
	conv := newTestConversation(models.StateContact)

	state := machine.Advance(context.Background(), conv, "89161234567")

	assert.Equal(t, models.StateContact, state)
	assert.Equal(t, "89161234567", conv.Phone)
	assert.Empty(t, conv.Name)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Пожалуйста, укажите имя.", notifier.sent[0])
}

func TestAdvanceContactNameCompletesHandover(t *testing.T) {
	machine, notifier := newTestMachine()
	conv := newTestConversation(models.StateContact)
	conv.Phone = "89161234567"

	state := machine.Advance(context.Background(), conv, "Ivan Petrov")

	assert.Equal(t, models.StateHandover, state)
	assert.Equal(t, "Ivan Petrov", conv.Name)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, HandoverMessage, notifier.sent[0])
}

func TestAdvanceContactNothingExtractedPromptsForBoth(t *testing.T) {
	machine, notifier := newTestMachine()
	conv := newTestConversation(models.StateContact)

	state := machine.Advance(context.Background(), conv, "ок")

	assert.Equal(t, models.StateContact, state)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Пожалуйста, укажите телефон и имя.", notifier.sent[0])
}

func TestAdvanceContactDoesNotOverwriteEarlierValues(t *testing.T) {
	machine, _ := newTestMachine()
	conv := newTestConversation(models.StateContact)
	conv.Phone = "89160000000"
	conv.Name = "Anna"

	machine.Advance(context.Background(), conv, "Пётр Сидоров 89169999999")

	assert.Equal(t, "89160000000", conv.Phone)
	assert.Equal(t, "Anna", conv.Name)
}

func TestAdvanceTerminalStatesStaySilent(t *testing.T) {
	for _, state := range []models.DialogState{models.StateHandover, models.StateActive} {
		t.Run(string(state), func(t *testing.T) {
			machine, notifier := newTestMachine()
			conv := newTestConversation(state)

			for i := 0; i < 3; i++ {
				got := machine.Advance(context.Background(), conv, "ещё вопрос")
				assert.Equal(t, state, got)
			}
			assert.Empty(t, notifier.sent)
		})
	}
}

func TestAdvanceUnknownStateResetsToGreeting(t *testing.T) {
	machine, notifier := newTestMachine()
	conv := newTestConversation("corrupted")

	state := machine.Advance(context.Background(), conv, "привет")

	assert.Equal(t, models.StateGreeting, state)
	assert.Empty(t, notifier.sent)
}

func TestAdvanceProceedsWhenSendFails(t *testing.T) {
	notifier := &recordingNotifier{err: fmt.Errorf("telegram down")}
	machine := NewMachine(notifier, zap.NewNop())
	conv := newTestConversation(models.StateGreeting)

	state := machine.Advance(context.Background(), conv, "привет")

	assert.Equal(t, models.StateQualify, state)
	assert.Equal(t, 0, conv.CurrentQuestion)
}

func TestAdvanceQualifySecondCallOverwritesSameKey(t *testing.T) {
	machine, _ := newTestMachine()
	conv := newTestConversation(models.StateQualify)
	conv.CurrentQuestion = 4

	machine.Advance(context.Background(), conv, "Москва")
	require.Len(t, conv.Answers, 1)

	// A replayed delivery without persistence in between must not grow the
	// answer map beyond what the transition table dictates.
	conv.State = models.StateQualify
	machine.Advance(context.Background(), conv, "Москва")
	assert.Len(t, conv.Answers, 1)
}

func TestApplyContactCompletesHandoverFromContactState(t *testing.T) {
	machine, notifier := newTestMachine()
	conv := newTestConversation(models.StateContact)

	state := machine.ApplyContact(context.Background(), conv, ContactShare{
		PhoneNumber: "+79160000000",
		FirstName:   "Anna",
	})

	assert.Equal(t, models.StateHandover, state)
	assert.Equal(t, "+79160000000", conv.Phone)
	assert.Equal(t, "Anna", conv.Name)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, HandoverMessage, notifier.sent[0])
}

func TestApplyContactJoinsLastName(t *testing.T) {
	machine, _ := newTestMachine()
	conv := newTestConversation(models.StateQualify)

	state := machine.ApplyContact(context.Background(), conv, ContactShare{
		PhoneNumber: "+79161112233",
		FirstName:   "Anna",
		LastName:    "Ivanova",
	})

	// Outside the contact state the share only stores the fields.
	assert.Equal(t, models.StateQualify, state)
	assert.Equal(t, "Anna Ivanova", conv.Name)
	assert.Equal(t, "+79161112233", conv.Phone)
}
