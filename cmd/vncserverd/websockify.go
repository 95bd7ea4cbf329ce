// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package main

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/retrodisplay/vncserver"
)

func websockifyCmd() *cobra.Command {
	var (
		listenAddr string
		targetAddr string
	)

	cmd := &cobra.Command{
		Use:   "websockify",
		Short: "Bridge WebSocket clients to the TCP VNC endpoint",
		Long: `Websockify accepts WebSocket connections (as used by noVNC and other
browser-based viewers) and relays binary frames to and from the
plain-TCP VNC endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWebsockify(listenAddr, targetAddr)
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", ":5802", "WebSocket listen address")
	cmd.Flags().StringVarP(&targetAddr, "target", "t", "127.0.0.1:5902", "VNC TCP endpoint to bridge to")

	return cmd
}

func runWebsockify(listenAddr, targetAddr string) error {
	logger := &vncserver.StandardLogger{}
	upgrader := websocket.Upgrader{
		Subprotocols: []string{"binary"},
		CheckOrigin:  func(*http.Request) bool { return true },
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed",
				vncserver.Field{Key: "error", Value: err.Error()})
			return
		}
		defer ws.Close()

		tcp, err := net.Dial("tcp", targetAddr)
		if err != nil {
			logger.Warn("target dial failed",
				vncserver.Field{Key: "target", Value: targetAddr},
				vncserver.Field{Key: "error", Value: err.Error()})
			return
		}
		defer tcp.Close()

		logger.Info("bridging client",
			vncserver.Field{Key: "remote", Value: r.RemoteAddr},
			vncserver.Field{Key: "target", Value: targetAddr})
		bridge(ws, tcp)
	}

	logger.Info("websockify listening",
		vncserver.Field{Key: "address", Value: listenAddr},
		vncserver.Field{Key: "target", Value: targetAddr})
	return http.ListenAndServe(listenAddr, http.HandlerFunc(handler))
}

// bridge relays bytes both ways until either side closes, then tears down
// both so the other copier unblocks.
func bridge(ws *websocket.Conn, tcp net.Conn) {
	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if _, err := tcp.Write(data); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		buf := make([]byte, 32*1024)
		for {
			n, err := tcp.Read(buf)
			if n > 0 {
				if werr := ws.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	<-done
	ws.Close()
	tcp.Close()
	<-done
}
