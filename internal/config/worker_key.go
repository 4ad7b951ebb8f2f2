package config

type WorkerKeyStruct struct {
	AnswerEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AnswerEventsQueue: "persist_answer_events_queue",
}
