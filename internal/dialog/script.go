package dialog

// Questions is the fixed qualification script, asked one at a time and
// indexed by Conversation.CurrentQuestion.
var Questions = []string{
	"Какой тип мебели вас интересует? (кухня, шкаф, диван и т.д.)",
	"В каком стиле вы предпочитаете? (модерн, классика, минимализм)",
	"Какой у вас бюджет примерно?",
	"Нужна ли помощь с дизайном?",
	"В каком городе планируете заказ?",
}

const GreetingMessage = `👋 Здравствуйте!

Я помогаю с вопросами по дизайну и мебели на заказ.

Расскажите, что вас интересует?`

const ContactMessage = `📞 Отлично!

Чтобы мы могли связаться с вами, укажите, пожалуйста:
• Ваше имя
• Номер телефона

Или отправьте контакт через кнопку "Поделиться контактом" в Telegram.`

const HandoverMessage = `✅ Спасибо за информацию!

Я передал вашу заявку владельцу. Скоро с вами свяжутся.

Если есть срочные вопросы, можете написать напрямую.`

// PhotoIntroMessage is sent when the very first inbound message carries no
// text (a photo-only opener) and the script starts from question one.
const PhotoIntroMessage = "Спасибо за фото! Какой тип мебели вас интересует? (кухня, шкаф, диван и т.д.)"
