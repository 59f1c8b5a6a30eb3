// Package openairealtime is a client for the transcription intent of the
// OpenAI Realtime API.
//
// A transcription session streams microphone audio upstream and receives
// transcription events back over one WebSocket:
//
//	client := openairealtime.NewClient(apiKey)
//	session, err := client.ConnectTranscription(ctx)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	err = session.UpdateTranscriptionSession(&openairealtime.TranscriptionSessionConfig{
//	    InputAudioTranscription: &openairealtime.TranscriptionConfig{
//	        Model:    openairealtime.ModelGPT4oMiniTranscribe,
//	        Language: "en",
//	    },
//	    TurnDetection: &openairealtime.TurnDetection{
//	        Type:      openairealtime.VADSemanticVAD,
//	        Eagerness: openairealtime.EagernessHigh,
//	    },
//	})
//
//	go func() {
//	    for chunk := range audio {
//	        session.AppendAudio(chunk)
//	    }
//	}()
//
//	for event, err := range session.Events() {
//	    if err != nil {
//	        return err
//	    }
//	    switch event.Type {
//	    case openairealtime.EventTypeTranscriptionCompleted:
//	        fmt.Println(event.Transcript)
//	    }
//	}
//
// Upstream error events and payloads that fail to parse are delivered as
// events; only transport failures end the iterator.
package openairealtime
