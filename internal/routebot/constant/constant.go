package constant

const (
	EMOJI_BULLET = "\U00002022" // •

	DEFAULT_GREETING_TOKEN = "hola"
	DEFAULT_DEEP_LINK_BASE = "https://wa.me/"

	MSG_MENU_HEADER = "¡Hola! Bienvenido a nuestro servicio de atención.\n" +
		"Por favor, elige el área con la que deseas comunicarte:"

	// %s - greeting token
	MSG_ASK_GREETING = "Por favor, inicia la conversación con un \"%s\"."

	// %s - department label
	MSG_AGENT_SHORTLY = "Un agente de %s te atenderá en breve."

	MSG_ASK_NAME = "Por favor, proporciona tu nombre."

	MSG_NOT_UNDERSTOOD = "Lo siento, no entendí tu selección. " +
		"Por favor, elige una de las opciones proporcionadas."

	// name, department label, deep link
	MSG_REDIRECT = "Gracias, %s. Te estamos redirigiendo al área de %s. " +
		"Por favor, haz clic en este enlace: %s"

	// %s - greeting token
	MSG_GENERIC_ERROR = "Lo siento, ha ocurrido un error. " +
		"Por favor, inicia la conversación con un \"%s\"."

	MSG_TRY_AGAIN_LATER = "Lo siento, ha ocurrido un error. Por favor, intenta de nuevo más tarde."

	// Prefilled text of the deep link chat: name, department label.
	DEEP_LINK_TEXT = "Hola, soy %s. Me comunico con el área de %s."
)
