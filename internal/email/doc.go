// Package email envía notificaciones por SMTP (go-mail). Hoy la única es el
// aviso al dueño de una encuesta cuando llega una respuesta nueva.
package email
