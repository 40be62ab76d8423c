package funnel

// Plantillas del embudo. El texto es el contrato con el cliente final,
// no se traduce ni se reformatea.

const TemplatePromo = `👋 ¡Hola! Qué bueno tenerte por aquí.

¿Usas Canva? Hoy te tengo una oportunidad increíble 🎯

Por solo *$5.000 COP al año* puedes tener acceso a *Canva PRO* con:

✨ Plantillas premium
🪄 Quitar fondo de imágenes
📐 Redimensionar diseños
📱 Mockups profesionales
🔓 Y muchas funciones más

✅ *Activación inmediata* con tu mismo correo de Canva
💸 *Pagas solo cuando confirmes que todo funciona*

*Envíame tu correo de Canva y lo activamos AHORA mismo* 🙌🏼`

const TemplateEmailReceived = `⏳ ¡Gracias por enviar tu correo!

Estamos preparando tu activación y en unos minutos recibirás la invitación. Te avisaré apenas esté lista 📩✨`

const TemplateStillPending = `⏳ Tu activación está pendiente, pronto te avisaremos.`

const TemplateAlreadyActivated = `✅ Ya tienes la cuenta activada.`

const TemplatePaymentInstructions = `💳 ¡Perfecto! Puedes realizar tu pago así:

📲 *NEQUI:* 310 531 3941
👤 A nombre de: *Algemiro Terán*
💰 Valor: *$5.000 COP*

Una vez hagas la transferencia, envíame una captura para confirmar y dejar todo listo ✅`

const TemplateAccessGranted = `✅ ¡Listo! Ya tienes acceso completo a Canva PRO 🎉

Disfruta todas las funciones premium: quitar fondo, redimensionar, plantillas y más.

Si tienes algún familiar o amigo que necesite Canva PRO, recomiéndanos ❤`

const TemplateFollowUp = `😊 ¡Un gusto asesorarte hoy! Si necesitas algo más, estaré siempre disponible. ¡Éxitos con tus diseños! 🎨🚀`

const TemplateActivationComplete = `✅ *¡Listo! Tu cuenta Canva PRO ya está activada*

📩 Revisa tu correo AHORA y acepta la invitación para disfrutar todos los beneficios.

🚀 *Verifica:*
🪄 Quitar fondos
📐 Redimensionar
🎨 Plantillas
📱 Mockups

⏰ Tienes 30 minutos para confirmar que todo funciona.`
